package tfeval

import "strings"

// expandTernaries repeatedly locates the innermost "cond ? a : b" and
// replaces it with the evaluated winner, the same recursive
// evaluate_subexp/find_nth splice the original performs before handing the
// remainder to shunting-yard. Bounded to 20 passes, matching the source's
// own runaway guard.
func expandTernaries(exp string, evalSub func(string) (string, error)) (string, error) {
	for pass := 0; pass < 20; pass++ {
		count := strings.Count(exp, "?")
		if count == 0 {
			return exp, nil
		}
		begin := findNth(exp, "?", count)
		end := findNth(exp, ":", count)
		if begin < 0 || end < 0 || end < begin {
			return exp, nil
		}
		// Walk left from "?" to the start of the conditional sub-expression.
		start := begin - 1
		for start > 0 && exp[start] == ' ' {
			start--
		}
		// Walk left further to the start of the token/group feeding the "?"
		depth := 0
		left := start
		for left > 0 {
			switch exp[left] {
			case ')':
				depth++
			case '(':
				if depth == 0 {
					left++
					goto found
				}
				depth--
			}
			left--
		}
	found:
		// Walk right from ":" to the end of the false branch: the end of
		// the string or the ")" closing the enclosing group.
		right := end + 1
		depth = 0
		for right < len(exp) {
			if exp[right] == '(' {
				depth++
			} else if exp[right] == ')' {
				if depth == 0 {
					break
				}
				depth--
			}
			right++
		}
		sub := exp[left:right]
		winner, err := evalSub(sub)
		if err != nil {
			return "", err
		}
		exp = exp[:left] + winner + exp[right:]
	}
	return exp, nil
}

// EvaluateSubexpression runs the full ToPostfix+EvaluatePostfix path on a
// standalone "cond ? a : b" fragment and returns the chosen branch as text,
// mirroring Conversion.evaluate_subexp.
func EvaluateSubexpression(sub string) (string, error) {
	qIdx := strings.Index(sub, "?")
	cIdx := strings.LastIndex(sub, ":")
	if qIdx < 0 || cIdx < 0 || cIdx < qIdx {
		return sub, nil
	}
	cond := strings.TrimSpace(sub[:qIdx])
	a := strings.TrimSpace(sub[qIdx+1 : cIdx])
	b := strings.TrimSpace(sub[cIdx+1:])

	pf, err := ToPostfix(hashStrings(infixNormalize(cond)))
	if err != nil {
		return "", err
	}
	v, err := EvaluatePostfix(pf)
	if err != nil {
		return "", err
	}
	if truthy(v) {
		return a, nil
	}
	return b, nil
}
