package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runConsolidator is C6: collapses family prefixes into one canonical
// node per CONSOLIDATED_NODES, rewrites references, drops self-loops, and
// deletes null_resource nodes (§4.6). Idempotent: re-running on an
// already-consolidated graph is a no-op because the rename map only ever
// points at the canonical identifier itself.
func runConsolidator(t *graph.TfData, tables *provider.Tables) error {
	rename := map[string]string{}

	for _, id := range append([]string{}, t.NodeList...) {
		typ := graph.TypeOf(id)
		if strings.HasPrefix(typ, "null_resource") {
			t.DeleteNode(id)
			continue
		}
		for prefix, canonical := range tables.ConsolidatedNodes {
			if strings.HasPrefix(typ, prefix) && id != canonical {
				rename[id] = canonical
				break
			}
		}
	}

	if len(rename) == 0 {
		return nil
	}

	for old, canonical := range rename {
		t.EnsureNode(canonical, mergeMetadata(t.MetaData[canonical], t.MetaData[old]))
		for _, child := range t.GraphDict[old] {
			t.AddEdge(canonical, resolveRename(rename, child))
		}
		delete(t.GraphDict, old)
		delete(t.MetaData, old)
		t.NodeList = removeFromList(t.NodeList, old)
	}
	if !containsString(t.NodeList, "") {
		// no-op guard kept for clarity; canonical ids are added via
		// EnsureNode above which already appends to NodeList.
	}

	for parent, children := range t.GraphDict {
		out := make([]string, 0, len(children))
		for _, c := range children {
			rewritten := resolveRename(rename, c)
			if rewritten == parent {
				continue // drop self-loop introduced by the rewrite
			}
			out = append(out, rewritten)
		}
		t.GraphDict[parent] = out
	}

	return nil
}

func resolveRename(rename map[string]string, id string) string {
	if canonical, ok := rename[id]; ok {
		return canonical
	}
	return id
}

func mergeMetadata(dst, src graph.Metadata) graph.Metadata {
	if dst == nil {
		dst = graph.Metadata{}
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}

func removeFromList(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

func containsString(ss []string, target string) bool {
	for _, s := range ss {
		if s == target {
			return true
		}
	}
	return false
}
