package tfeval

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// SymbolTables hold the per-module value namespaces the substitution pass
// draws from: variables (already resolved per the precedence in
// interpreter.get_variable_values: tfvars > TF_VAR_* > module args >
// default), locals, module outputs, and the small fixed data-source table.
type SymbolTables struct {
	Variables     map[string]map[string]tfvalue.Value // module -> name -> value
	Locals        map[string]map[string]tfvalue.Value
	ModuleOutputs map[string]map[string]tfvalue.Value // module -> output -> value
	DataSources   map[string]tfvalue.Value            // "data.<type>.<name>" -> value
	// KnownIdentifiers enables splat expansion: for `foo.bar[*].attr` the
	// evaluator needs to know how many numbered clones of foo.bar exist at
	// evaluation time (see SPEC_FULL §3, handle_splat_statements).
	KnownIdentifiers map[string]int // base id -> clone count (0 = not cloned)
}

func NewSymbolTables() *SymbolTables {
	return &SymbolTables{
		Variables:        map[string]map[string]tfvalue.Value{},
		Locals:           map[string]map[string]tfvalue.Value{},
		ModuleOutputs:    map[string]map[string]tfvalue.Value{},
		DataSources:      map[string]tfvalue.Value{},
		KnownIdentifiers: map[string]int{},
	}
}

// Evaluator resolves expression strings against a SymbolTables instance.
type Evaluator struct {
	Symbols *SymbolTables
}

func New(symbols *SymbolTables) *Evaluator {
	return &Evaluator{Symbols: symbols}
}

var (
	reVarRef    = regexp.MustCompile(`\bvar\.([A-Za-z_][A-Za-z0-9_]*)(\.[A-Za-z0-9_]+)?`)
	reLocalRef  = regexp.MustCompile(`\blocal\.([A-Za-z_][A-Za-z0-9_]*)`)
	reModuleRef = regexp.MustCompile(`\bmodule\.([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)`)
	reDataRef   = regexp.MustCompile(`\bdata\.([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)`)
	reSplat     = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_.]*)\[\*\]`)
)

// MissingSymbolError is returned when a variable has no value and no
// default; this is a "missing input" failure per §7 and must abort the
// pipeline rather than degrade to a sentinel.
type MissingSymbolError struct {
	Symbol string
	Module string
}

func (e *MissingSymbolError) Error() string {
	return fmt.Sprintf("tfeval: unresolved symbol %q referenced from module %q", e.Symbol, e.Module)
}

// Evaluate performs the full pipeline described in §4.1: substitution to a
// fixpoint, splat expansion, function-call resolution, ternary expansion,
// then shunting-yard + stack evaluation for the remaining boolean/arithmetic
// residue. `module` scopes var./local. lookups; it is "main" for the root
// module.
func (e *Evaluator) Evaluate(expr, module string) (tfvalue.Value, error) {
	exp, err := e.substitute(expr, module)
	if err != nil {
		return tfvalue.Value{}, err
	}

	exp = e.expandSplat(exp)
	exp = evalFunctionCalls(exp)

	exp, err = expandTernaries(exp, EvaluateSubexpression)
	if err != nil {
		return tfvalue.Sentinel(tfvalue.SentinelErrorPrefix), nil
	}

	trimmed := strings.TrimSpace(exp)
	if trimmed == "" {
		return tfvalue.Null(), nil
	}
	if !looksLikeExpression(trimmed) {
		// Nothing left to evaluate arithmetically/boolean-wise: the
		// substitution result itself (a plain string/list/map literal) is
		// the final value.
		return parseLiteralArg(trimmed), nil
	}

	normalized := hashStrings(infixNormalize(trimmed))
	pf, err := ToPostfix(normalized)
	if err != nil {
		return tfvalue.Sentinel(tfvalue.SentinelErrorPrefix), nil
	}
	v, err := EvaluatePostfix(pf)
	if err != nil {
		return tfvalue.Sentinel(tfvalue.SentinelErrorPrefix), nil
	}
	return v, nil
}

// looksLikeExpression reports whether the residual text still contains an
// operator the postfix machine understands; plain identifiers/strings skip
// straight through as literals.
func looksLikeExpression(s string) bool {
	for _, op := range []string{"+", "~", "*", "/", "^", "&", "|", "!", ">", "<", "=", "?"} {
		if strings.Contains(s, op) {
			return true
		}
	}
	return false
}

// substitute repeats variable/local/module/data substitution until no
// further replacement is possible, per the "repeat until no substitution
// possible" discipline in §4.1.
func (e *Evaluator) substitute(expr, module string) (string, error) {
	exp := expr
	for pass := 0; pass < 50; pass++ {
		changed := false

		if loc := reModuleRef.FindStringSubmatchIndex(exp); loc != nil {
			mod := exp[loc[2]:loc[3]]
			out := exp[loc[4]:loc[5]]
			val, ok := e.Symbols.ModuleOutputs[mod][out]
			if !ok {
				val = tfvalue.Sentinel(tfvalue.SentinelUnknown)
			}
			exp = exp[:loc[0]] + val.Quoted() + exp[loc[1]:]
			changed = true
		}
		if loc := reDataRef.FindStringSubmatchIndex(exp); loc != nil {
			key := "data." + exp[loc[2]:loc[3]] + "." + exp[loc[4]:loc[5]]
			val, ok := e.Symbols.DataSources[key]
			if !ok {
				val = tfvalue.Sentinel(tfvalue.SentinelUnknown)
			}
			exp = exp[:loc[0]] + val.Quoted() + exp[loc[1]:]
			changed = true
		}
		if loc := reLocalRef.FindStringSubmatchIndex(exp); loc != nil {
			name := exp[loc[2]:loc[3]]
			val, ok := e.Symbols.Locals[module][name]
			if !ok {
				val, ok = e.Symbols.Locals["main"][name]
			}
			if !ok {
				return "", &MissingSymbolError{Symbol: "local." + name, Module: module}
			}
			exp = exp[:loc[0]] + val.Quoted() + exp[loc[1]:]
			changed = true
		}
		if loc := reVarRef.FindStringSubmatchIndex(exp); loc != nil {
			name := exp[loc[2]:loc[3]]
			val, ok := e.Symbols.Variables[module][name]
			if !ok {
				val, ok = e.Symbols.Variables["main"][name]
			}
			if !ok {
				return "", &MissingSymbolError{Symbol: "var." + name, Module: module}
			}
			if loc[4] >= 0 {
				key := strings.TrimPrefix(exp[loc[4]:loc[5]], ".")
				if m, ok2 := val.Map(); ok2 {
					if v, ok3 := m[key]; ok3 {
						val = v
					}
				}
			}
			exp = exp[:loc[0]] + val.Quoted() + exp[loc[1]:]
			changed = true
		}

		if !changed {
			return exp, nil
		}
	}
	return exp, nil
}

// expandSplat rewrites `foo.bar[*].attr`-style splat references into a list
// literal over every known numbered clone, per handle_splat_statements.
func (e *Evaluator) expandSplat(exp string) string {
	return reSplat.ReplaceAllStringFunc(exp, func(m string) string {
		base := strings.TrimSuffix(m, "[*]")
		n := e.Symbols.KnownIdentifiers[base]
		if n < 2 {
			return base
		}
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = fmt.Sprintf("%s~%d", base, i)
		}
		return "[" + strings.Join(parts, ",") + "]"
	})
}

// ResolveCount evaluates a metadata entry's count/for_each expression and
// returns a normalized non-negative integer, or ok=false if evaluation
// failed (the caller must then mark the node hidden per §4.1's count
// resolution rule).
func (e *Evaluator) ResolveCount(expr, module string) (int, bool) {
	if strings.TrimSpace(expr) == "" {
		return 1, true
	}
	v, err := e.Evaluate(expr, module)
	if err != nil {
		return 0, false
	}
	if v.IsError() {
		return 0, false
	}
	n, ok := v.Int()
	if !ok || n < 0 {
		return 0, false
	}
	return int(n), true
}
