package pipeline

import (
	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/tfeval"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// runExpressionEvaluator is C1: resolves every metadata value that still
// looks like an unevaluated expression, and writes back an integer count
// for every node, hiding those whose count is 0 or whose evaluation
// failed (§4.1).
func runExpressionEvaluator(t *graph.TfData) error {
	symbols := tfeval.NewSymbolTables()
	symbols.Variables = t.VariableMap
	symbols.Locals = t.AllLocals
	symbols.ModuleOutputs = t.ModuleOutputs
	for _, id := range t.NodeList {
		if n := graph.CloneIndex(id); n > 0 {
			base := graph.BaseID(id)
			symbols.KnownIdentifiers[base]++
		}
	}
	ev := tfeval.New(symbols)

	// Snapshot keys before iterating/mutating, per the design note in §9
	// ("the source sometimes deletes a resource during iteration ...
	// implementations must snapshot keys before iterating").
	ids := append([]string{}, t.NodeList...)

	for _, id := range ids {
		md := t.MetaData[id]
		module := t.ModuleOf[id]

		for k, v := range md {
			if v.Kind() != tfvalue.KindString {
				continue
			}
			if !looksUnevaluated(v.AsString()) {
				continue
			}
			resolved, err := ev.Evaluate(v.AsString(), module)
			if err != nil {
				// Missing input: fatal per §7 kind 1.
				return err
			}
			md[k] = resolved
		}

		count := 1
		if raw, ok := md["count"]; ok {
			n, ok := ev.ResolveCount(raw.AsString(), module)
			if !ok {
				count = 0
			} else {
				count = n
			}
		} else if raw, ok := md["for_each"]; ok {
			n, ok := ev.ResolveCount(raw.AsString(), module)
			if !ok {
				count = 0
			} else {
				count = n
			}
		}
		md["count"] = tfvalue.Int(int64(count))
		t.MetaData[id] = md

		if count == 0 {
			t.Hide(id)
		}
	}
	return nil
}

func looksUnevaluated(s string) bool {
	for _, token := range []string{"var.", "local.", "module.", "data.", "${"} {
		if containsToken(s, token) {
			return true
		}
	}
	return false
}

func containsToken(s, tok string) bool {
	return len(s) >= len(tok) && indexOf(s, tok) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
