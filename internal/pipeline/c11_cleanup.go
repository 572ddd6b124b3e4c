package pipeline

import (
	"log/slog"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runCleanup is C11: reverses selected sibling edges per
// REVERSE_ARROW_LIST priority, breaks cycles (logging each removal),
// sorts every adjacency list, and validates invariants (§4.11).
//
// Running this pass a second time on its own output is a no-op: sibling
// reversal only fires on directional ambiguity that the first pass
// already resolved, cycle-breaking finds nothing left to break, and
// sorting an already-sorted list changes nothing (§8 "round-trip and
// idempotence").
func runCleanup(t *graph.TfData, tables *provider.Tables, logger *slog.Logger) error {
	reverseSiblingEdges(t, tables)

	removed := t.BreakCycles()
	for _, r := range removed {
		logger.Info("cycle edge removed", "from", r.From, "to", r.To)
	}

	t.Finalize()

	groupTypes := make(map[string]bool, len(tables.GroupNodes))
	for k, v := range tables.GroupNodes {
		groupTypes[k] = v
	}
	if issues := t.Validate(groupTypes); len(issues) > 0 {
		for _, iss := range issues {
			logger.Warn("validation issue", "kind", iss.Kind, "node", iss.Node, "detail", iss.Detail)
		}
	}
	return nil
}

// reverseSiblingEdges: for every edge a -> b where both a and b are
// top-level siblings inside the same group container, apply the
// REVERSE_ARROW_LIST priority to pick the final direction (§4.11).
func reverseSiblingEdges(t *graph.TfData, tables *provider.Tables) {
	siblingGroups := map[string][]string{}
	for parent, children := range t.GraphDict {
		if !tables.GroupNodes[graph.TypeOf(parent)] {
			continue
		}
		siblingGroups[parent] = children
	}

	for _, siblings := range siblingGroups {
		set := make(map[string]bool, len(siblings))
		for _, s := range siblings {
			set[s] = true
		}
		for _, a := range siblings {
			for _, b := range append([]string{}, t.GraphDict[a]...) {
				if !set[b] {
					continue
				}
				aRank := tables.ReverseArrowRank(graph.TypeOf(a))
				bRank := tables.ReverseArrowRank(graph.TypeOf(b))
				if bRank >= 0 && (aRank < 0 || bRank < aRank) {
					t.RemoveEdge(a, b)
					t.AddEdge(b, a)
				}
			}
		}
	}
}
