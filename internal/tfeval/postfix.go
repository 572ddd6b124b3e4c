// Postfix conversion and evaluation, ported from the shunting-yard /
// stack-machine design in the original implementation's postfix module but
// expressed as a proper tokenizer + typed stack rather than single-character
// scanning over a pre-mangled string. Ternary pre-expansion, two-character
// operator folding and string hashing follow the same algorithm the source
// uses, just against tokens instead of raw characters.
package tfeval

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// infixNormalize folds two-character operators down to the single-character
// forms the precedence table uses, and rewrites the Terraform string
// constants "True"/"False" to the boolean letters used internally. This is
// the direct analogue of Conversion.infixToPostfix's string-replace prelude.
func infixNormalize(exp string) string {
	replacer := strings.NewReplacer(
		"==", "=",
		"!=", "!",
		"&&", "&",
		"||", "|",
		">=", "G",
		"<=", "L",
		`"True"`, "T",
		`"False"`, "F",
		"True", "T",
		"False", "F",
	)
	return replacer.Replace(exp)
}

// hashStrings replaces every quoted string literal with an integer digest so
// the stack evaluator can compare "strings" using ordinary numeric equality,
// mirroring postfix.compute_hash. Unlike the original's SHA-256-as-bigint
// reduction we keep the hash 63-bit so it fits an int64 stack slot; collision
// risk is the same order as the original's practical use (diagram metadata
// strings, not adversarial input).
func hashStrings(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '"' || s[i] == '\'' {
			q := s[i]
			j := i + 1
			for j < len(s) && s[j] != q {
				j++
			}
			lit := s[i+1 : j]
			if lit == "" {
				b.WriteString("0")
			} else {
				b.WriteString(hashToken(lit))
			}
			i = j + 1
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func hashToken(s string) string {
	sum := sha256.Sum256([]byte(s))
	sum[0] &= 0x7f // keep 63 bits so the digest fits an int64
	n := new(big.Int).SetBytes(sum[:8])
	n.Abs(n)
	return n.String()
}

// findNth locates the n-th occurrence of substr in s, counting from the
// start, matching the original's find_nth used for ternary nesting.
func findNth(s, substr string, n int) int {
	idx := -1
	for k := 0; k < n; k++ {
		next := strings.Index(s[idx+1:], substr)
		if next < 0 {
			return -1
		}
		idx = idx + 1 + next
	}
	return idx
}

// ToPostfix converts a normalized, hash-folded infix expression into a
// postfix token stream (space-separated) using the precedence table from
// §4.1. Ternary sub-expressions must already have been resolved by the
// caller (see expandTernaries) before this runs.
func ToPostfix(exp string) (string, error) {
	toks := tokenize(exp)
	var output []string
	var ops []string

	notGreater := func(op string) bool {
		if len(ops) == 0 {
			return false
		}
		top := ops[len(ops)-1]
		a, aok := precedence[op]
		b, bok := precedence[top]
		if !aok || !bok {
			return false
		}
		return a <= b
	}

	for _, t := range toks {
		switch t.kind {
		case tokNumber, tokString:
			output = append(output, t.text)
		case tokIdent:
			output = append(output, t.text)
		case tokLParen:
			ops = append(ops, "(")
		case tokRParen:
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return "", fmt.Errorf("tfeval: unbalanced parentheses")
			}
			ops = ops[:len(ops)-1] // discard "("
		case tokOp:
			for notGreater(t.text) {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, t.text)
		}
	}
	for len(ops) > 0 {
		output = append(output, ops[len(ops)-1])
		ops = ops[:len(ops)-1]
	}
	return strings.Join(output, " "), nil
}

// EvaluatePostfix runs the stack machine over a space-separated postfix
// token stream and returns the resulting scalar value. Hashed string
// literals are returned as tfvalue.Int since equality is all the pipeline
// ever needs from them at this stage.
func EvaluatePostfix(postfix string) (tfvalue.Value, error) {
	var stack []tfvalue.Value
	push := func(v tfvalue.Value) { stack = append(stack, v) }
	pop := func() (tfvalue.Value, bool) {
		if len(stack) == 0 {
			return tfvalue.Value{}, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for _, tok := range strings.Fields(postfix) {
		switch tok {
		case "+", "~", "*", "/", "^", "&", "|", "!", ">", "<", "=", "G", "L":
			b, ok1 := pop()
			a, ok2 := pop()
			if !ok1 || !ok2 {
				return tfvalue.Value{}, fmt.Errorf("tfeval: stack underflow on operator %q", tok)
			}
			res, err := applyOp(tok, a, b)
			if err != nil {
				return tfvalue.Value{}, err
			}
			push(res)
		default:
			push(literalValue(tok))
		}
	}
	v, ok := pop()
	if !ok {
		return tfvalue.Value{}, fmt.Errorf("tfeval: empty expression")
	}
	return v, nil
}

func literalValue(tok string) tfvalue.Value {
	switch tok {
	case "T":
		return tfvalue.Bool(true)
	case "F":
		return tfvalue.Bool(false)
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return tfvalue.Int(n)
	}
	return tfvalue.String(tok)
}

func applyOp(op string, a, b tfvalue.Value) (tfvalue.Value, error) {
	an, aIsNum := a.Int()
	bn, bIsNum := b.Int()

	switch op {
	case "+":
		if aIsNum && bIsNum {
			return tfvalue.Int(an + bn), nil
		}
		return tfvalue.String(a.AsString() + b.AsString()), nil
	case "~":
		if aIsNum && bIsNum {
			return tfvalue.Int(an - bn), nil
		}
		return tfvalue.Sentinel(tfvalue.SentinelErrorPrefix + "(subtract)"), nil
	case "*":
		if aIsNum && bIsNum {
			return tfvalue.Int(an * bn), nil
		}
	case "/":
		if aIsNum && bIsNum && bn != 0 {
			return tfvalue.Int(an / bn), nil
		}
	case "^":
		if aIsNum && bIsNum {
			r := int64(1)
			for k := int64(0); k < bn; k++ {
				r *= an
			}
			return tfvalue.Int(r), nil
		}
	case "&":
		return tfvalue.Bool(truthy(a) && truthy(b)), nil
	case "|":
		return tfvalue.Bool(truthy(a) || truthy(b)), nil
	case "!":
		return tfvalue.Bool(!valuesEqual(a, b)), nil
	case "=":
		return tfvalue.Bool(valuesEqual(a, b)), nil
	case ">":
		if aIsNum && bIsNum {
			return tfvalue.Bool(an > bn), nil
		}
	case "<":
		if aIsNum && bIsNum {
			return tfvalue.Bool(an < bn), nil
		}
	case "G":
		if aIsNum && bIsNum {
			return tfvalue.Bool(an >= bn), nil
		}
	case "L":
		if aIsNum && bIsNum {
			return tfvalue.Bool(an <= bn), nil
		}
	}
	return tfvalue.Sentinel(tfvalue.SentinelErrorPrefix + "(" + op + ")"), nil
}

func truthy(v tfvalue.Value) bool {
	if b, ok := tryBool(v); ok {
		return b
	}
	n, ok := v.Int()
	return ok && n != 0
}

func tryBool(v tfvalue.Value) (bool, bool) {
	switch v.AsString() {
	case "true", "T":
		return true, true
	case "false", "F":
		return false, true
	}
	return false, false
}

func valuesEqual(a, b tfvalue.Value) bool {
	an, aok := a.Int()
	bn, bok := b.Int()
	if aok && bok {
		return an == bn
	}
	return a.AsString() == b.AsString()
}
