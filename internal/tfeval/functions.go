package tfeval

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// builtins is the minimum function table required by §4.1: length,
// concat, flatten, distinct, element, coalescelist, keys, lookup, max,
// replace, setproduct, contains, regexall. Each function receives its
// already-evaluated argument values (the call evaluator evaluates nested
// calls first, recursive-descent on the outermost call).
type builtinFn func(args []tfvalue.Value) tfvalue.Value

var builtins map[string]builtinFn

func init() {
	builtins = map[string]builtinFn{
		"length":       fnLength,
		"concat":       fnConcat,
		"flatten":      fnFlatten,
		"distinct":     fnDistinct,
		"element":      fnElement,
		"coalescelist": fnCoalesceList,
		"keys":         fnKeys,
		"lookup":       fnLookup,
		"max":          fnMax,
		"replace":      fnReplace,
		"setproduct":   fnSetProduct,
		"contains":     fnContains,
		"regexall":     fnRegexAll,
	}
}

func fnLength(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 1 {
		return tfvalue.ErrorOf("length", "arity")
	}
	if l, ok := args[0].List(); ok {
		return tfvalue.Int(int64(len(l)))
	}
	if m, ok := args[0].Map(); ok {
		return tfvalue.Int(int64(len(m)))
	}
	return tfvalue.Int(int64(len(args[0].AsString())))
}

func fnConcat(args []tfvalue.Value) tfvalue.Value {
	var out []tfvalue.Value
	for _, a := range args {
		out = append(out, tfvalue.CoerceToList(a)...)
	}
	return tfvalue.List(out)
}

func fnFlatten(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 1 {
		return tfvalue.ErrorOf("flatten", "arity")
	}
	var out []tfvalue.Value
	var walk func(v tfvalue.Value)
	walk = func(v tfvalue.Value) {
		if l, ok := v.List(); ok {
			for _, e := range l {
				walk(e)
			}
			return
		}
		out = append(out, v)
	}
	walk(args[0])
	return tfvalue.List(out)
}

func fnDistinct(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 1 {
		return tfvalue.ErrorOf("distinct", "arity")
	}
	l := tfvalue.CoerceToList(args[0])
	seen := make(map[string]bool, len(l))
	var out []tfvalue.Value
	for _, v := range l {
		k := v.AsString()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return tfvalue.List(out)
}

func fnElement(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 2 {
		return tfvalue.ErrorOf("element", "arity")
	}
	l := tfvalue.CoerceToList(args[0])
	if len(l) == 0 {
		return tfvalue.Sentinel(tfvalue.SentinelUnknown)
	}
	idx, ok := args[1].Int()
	if !ok {
		return tfvalue.ErrorOf("element", "index")
	}
	// Terraform's element() wraps using modulo rather than erroring.
	i := int(idx) % len(l)
	if i < 0 {
		i += len(l)
	}
	return l[i]
}

func fnCoalesceList(args []tfvalue.Value) tfvalue.Value {
	for _, a := range args {
		if l, ok := a.List(); ok && len(l) > 0 {
			return a
		}
	}
	if len(args) > 0 {
		return args[len(args)-1]
	}
	return tfvalue.List(nil)
}

func fnKeys(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 1 {
		return tfvalue.ErrorOf("keys", "arity")
	}
	m, ok := args[0].Map()
	if !ok {
		return tfvalue.ErrorOf("keys", "type")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]tfvalue.Value, len(keys))
	for i, k := range keys {
		out[i] = tfvalue.String(k)
	}
	return tfvalue.List(out)
}

func fnLookup(args []tfvalue.Value) tfvalue.Value {
	if len(args) < 2 {
		return tfvalue.ErrorOf("lookup", "arity")
	}
	m, ok := args[0].Map()
	if !ok {
		return tfvalue.ErrorOf("lookup", "type")
	}
	key := args[1].AsString()
	if v, ok := m[key]; ok {
		return v
	}
	if len(args) >= 3 {
		return args[2]
	}
	return tfvalue.Sentinel(tfvalue.SentinelUnknown)
}

func fnMax(args []tfvalue.Value) tfvalue.Value {
	var vals []int64
	for _, a := range args {
		if l, ok := a.List(); ok {
			for _, e := range l {
				if n, ok := e.Int(); ok {
					vals = append(vals, n)
				}
			}
			continue
		}
		if n, ok := a.Int(); ok {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return tfvalue.ErrorOf("max", "empty")
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if v > best {
			best = v
		}
	}
	return tfvalue.Int(best)
}

func fnReplace(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 3 {
		return tfvalue.ErrorOf("replace", "arity")
	}
	s := args[0].AsString()
	substr := args[1].AsString()
	repl := args[2].AsString()
	if strings.HasPrefix(substr, "/") && strings.HasSuffix(substr, "/") && len(substr) > 1 {
		re, err := regexp.Compile(substr[1 : len(substr)-1])
		if err != nil {
			return tfvalue.ErrorOf("replace", "regex")
		}
		return tfvalue.String(re.ReplaceAllString(s, repl))
	}
	return tfvalue.String(strings.ReplaceAll(s, substr, repl))
}

func fnSetProduct(args []tfvalue.Value) tfvalue.Value {
	lists := make([][]tfvalue.Value, len(args))
	for i, a := range args {
		lists[i] = tfvalue.CoerceToList(a)
	}
	if len(lists) == 0 {
		return tfvalue.List(nil)
	}
	result := [][]tfvalue.Value{{}}
	for _, l := range lists {
		var next [][]tfvalue.Value
		for _, prefix := range result {
			for _, v := range l {
				row := append(append([]tfvalue.Value{}, prefix...), v)
				next = append(next, row)
			}
		}
		result = next
	}
	out := make([]tfvalue.Value, len(result))
	for i, row := range result {
		out[i] = tfvalue.List(row)
	}
	return tfvalue.List(out)
}

func fnContains(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 2 {
		return tfvalue.ErrorOf("contains", "arity")
	}
	l := tfvalue.CoerceToList(args[0])
	target := args[1].AsString()
	for _, v := range l {
		if v.AsString() == target {
			return tfvalue.Bool(true)
		}
	}
	return tfvalue.Bool(false)
}

func fnRegexAll(args []tfvalue.Value) tfvalue.Value {
	if len(args) != 2 {
		return tfvalue.ErrorOf("regexall", "arity")
	}
	re, err := regexp.Compile(args[0].AsString())
	if err != nil {
		return tfvalue.ErrorOf("regexall", "pattern")
	}
	matches := re.FindAllString(args[1].AsString(), -1)
	out := make([]tfvalue.Value, len(matches))
	for i, m := range matches {
		out[i] = tfvalue.String(m)
	}
	return tfvalue.List(out)
}

// callPattern matches a `name(` call opening at the start of a string.
// evalFunctionCalls does not use it; findInnermostCall does the scanning.
var callPattern = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*)\(`)

// evalFunctionCalls finds the innermost (argument-free) function call in
// exp and evaluates it, repeating until no call remains. This is the
// recursive-descent discipline from §4.1: "evaluator is recursive-descent
// on the outermost call, evaluating parameters first" — achieved here by
// always resolving the innermost (argument-free) call first, which is
// equivalent since outer calls cannot evaluate until their arguments do.
func evalFunctionCalls(exp string) string {
	for pass := 0; pass < 50; pass++ {
		name, argStart, argEnd, ok := findInnermostCall(exp)
		if !ok {
			return exp
		}
		argText := exp[argStart:argEnd]
		args := splitArgs(argText)
		vals := make([]tfvalue.Value, len(args))
		for i, a := range args {
			vals[i] = parseLiteralArg(a)
		}
		fn, known := builtins[name]
		var result tfvalue.Value
		if known {
			result = fn(vals)
		} else {
			result = tfvalue.ErrorOf(name, argText)
		}
		exp = exp[:callStartOf(exp, name, argStart)] + result.Quoted() + exp[argEnd+1:]
	}
	return exp
}

func callStartOf(exp, name string, argStart int) int {
	return argStart - len(name) - 1
}

// findInnermostCall scans for `ident(...)` where the parenthesized span
// contains no further unmatched "(", i.e. the innermost call.
func findInnermostCall(exp string) (name string, argStart, argEnd int, ok bool) {
	best := -1
	for i := 0; i < len(exp); i++ {
		if exp[i] != '(' {
			continue
		}
		// walk back over ident chars
		j := i - 1
		for j >= 0 && (isIdentRune(rune(exp[j]))) {
			j--
		}
		ident := exp[j+1 : i]
		if ident == "" || !isLetterStart(ident[0]) {
			continue
		}
		// find matching close paren
		depth := 1
		k := i + 1
		innermost := true
		for k < len(exp) && depth > 0 {
			if exp[k] == '(' {
				depth++
				innermost = false
			}
			if exp[k] == ')' {
				depth--
			}
			if depth > 0 {
				k++
			}
		}
		if depth != 0 {
			continue
		}
		if innermost {
			best = i
			name = ident
			argStart = i + 1
			argEnd = k
			ok = true
			return name, argStart, argEnd, ok
		}
	}
	_ = best
	return "", 0, 0, false
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isLetterStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var args []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[last:]))
	return args
}

func parseLiteralArg(a string) tfvalue.Value {
	a = strings.TrimSpace(a)
	if len(a) >= 2 && (a[0] == '"' && a[len(a)-1] == '"') {
		return tfvalue.String(a[1 : len(a)-1])
	}
	if strings.HasPrefix(a, "[") && strings.HasSuffix(a, "]") {
		inner := splitArgs(a[1 : len(a)-1])
		vals := make([]tfvalue.Value, len(inner))
		for i, e := range inner {
			vals[i] = parseLiteralArg(e)
		}
		return tfvalue.List(vals)
	}
	if strings.HasPrefix(a, "{") && strings.HasSuffix(a, "}") {
		pairs := splitArgs(a[1 : len(a)-1])
		m := make(map[string]tfvalue.Value, len(pairs))
		for _, p := range pairs {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) == 2 {
				m[strings.TrimSpace(kv[0])] = parseLiteralArg(kv[1])
			}
		}
		return tfvalue.Map(m)
	}
	if n, err := strconv.ParseInt(a, 10, 64); err == nil {
		return tfvalue.Int(n)
	}
	if a == "true" {
		return tfvalue.Bool(true)
	}
	if a == "false" {
		return tfvalue.Bool(false)
	}
	return tfvalue.String(a)
}
