package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runRelationEnricher is C5: scans every metadata attribute value on every
// node for references to other known identifiers and adds edges, applying
// reverse-arrow tie-breaks and implied-connection keywords (§4.5).
func runRelationEnricher(t *graph.TfData, tables *provider.Tables) error {
	for _, src := range t.NodeList {
		if t.Hidden[src] {
			continue
		}
		md := t.MetaData[src]

		for key, v := range md {
			text := v.AsString()
			if text == "" {
				continue
			}
			insideDependsOn := key == "depends_on"

			matched := false
			for _, dst := range t.NodeList {
				if dst == src || t.Hidden[dst] {
					continue
				}
				if !strings.Contains(text, graph.NameOf(dst)) {
					continue
				}
				matched = true
				if insideDependsOn {
					// depends_on references never imply an outgoing
					// containment arrow from src, per §4.5.
					continue
				}
				wireEdge(t, tables, src, dst)
			}

			if matched || insideDependsOn {
				continue
			}
			// No direct match: fall back to IMPLIED_CONNECTIONS keywords.
			if implied, ok := tables.ImpliedConnections[key]; ok {
				if dst := firstNodeOfType(t, implied); dst != "" {
					wireEdge(t, tables, src, dst)
				}
			}
		}
	}
	return nil
}

// wireEdge adds src->dst, swapping direction per the REVERSE_ARROW_LIST
// tie-break: if both endpoints are listed, the one earlier in the list is
// the outer context and becomes the edge's source (the container).
func wireEdge(t *graph.TfData, tables *provider.Tables, src, dst string) {
	srcRank := tables.ReverseArrowRank(graph.TypeOf(src))
	dstRank := tables.ReverseArrowRank(graph.TypeOf(dst))

	switch {
	case dstRank >= 0 && (srcRank < 0 || dstRank <= srcRank):
		t.AddEdge(dst, src)
	case srcRank >= 0:
		t.AddEdge(src, dst)
	default:
		t.AddEdge(src, dst)
	}
}

func firstNodeOfType(t *graph.TfData, typ string) string {
	for _, id := range t.NodeList {
		if t.Hidden[id] {
			continue
		}
		if graph.TypeOf(id) == typ {
			return id
		}
	}
	return ""
}
