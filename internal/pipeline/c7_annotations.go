package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// runAnnotationEngine is C7: applies AUTO_ANNOTATIONS, then the optional
// user annotation document's add/connect/disconnect/remove/update
// sections (§4.7).
func runAnnotationEngine(t *graph.TfData, tables *provider.Tables, ann *Annotation) error {
	applyAutoAnnotations(t, tables)
	if ann == nil {
		return nil
	}

	for id, md := range ann.Add {
		t.EnsureNode(id, toGraphMetadata(md))
	}

	for src, targets := range ann.Connect {
		for _, srcID := range expandWildcard(t, src) {
			for _, target := range targets {
				t.EnsureNode(target.Target, nil)
				t.AddEdge(srcID, target.Target)
				if target.Label != "" {
					setEdgeLabel(t, srcID, target.Target, target.Label)
				}
			}
		}
	}

	for src, targets := range ann.Disconnect {
		for _, srcID := range expandWildcard(t, src) {
			for _, target := range targets {
				t.RemoveEdge(srcID, target)
			}
		}
	}

	for _, pattern := range ann.Remove {
		for _, id := range expandWildcard(t, pattern) {
			t.DeleteNode(id)
		}
	}

	for pattern, fields := range ann.Update {
		for _, id := range expandWildcard(t, pattern) {
			md := t.MetaData[id]
			t.MetaData[id] = mergeMetadataDeep(md, toGraphMetadata(fields))
		}
	}

	return nil
}

// applyAutoAnnotations wires AUTO_ANNOTATIONS entries: for each node whose
// prefix matches, add (or create) an edge to the named target in the
// entry's direction, and prune any "delete" prefixes from the node's
// existing connections.
func applyAutoAnnotations(t *graph.TfData, tables *provider.Tables) {
	for _, id := range append([]string{}, t.NodeList...) {
		if t.Hidden[id] {
			continue
		}
		typ := graph.TypeOf(id)
		for _, entry := range tables.AutoAnnotations {
			if !strings.HasPrefix(typ, entry.Prefix) {
				continue
			}
			target := resolveAnnotationTarget(t, entry.Target)
			switch entry.Direction {
			case "reverse":
				t.AddEdge(target, id)
			default:
				t.AddEdge(id, target)
			}
			for _, deletePrefix := range entry.Delete {
				pruneConnectionsByPrefix(t, id, deletePrefix)
			}
		}
	}
}

// resolveAnnotationTarget handles "prefix.*" target specs: use any
// existing node with that prefix, else synthesize "<prefix>.this".
func resolveAnnotationTarget(t *graph.TfData, spec string) string {
	if !strings.HasSuffix(spec, ".*") {
		t.EnsureNode(spec, nil)
		return spec
	}
	prefix := strings.TrimSuffix(spec, ".*")
	for _, id := range t.NodeList {
		if strings.HasPrefix(graph.TypeOf(id), prefix) {
			return id
		}
	}
	synthetic := prefix + ".this"
	t.EnsureNode(synthetic, graph.Metadata{
		"name": tfvalue.String("this"),
		"type": tfvalue.String(prefix),
	})
	return synthetic
}

func pruneConnectionsByPrefix(t *graph.TfData, node, prefix string) {
	for parent, children := range t.GraphDict {
		if parent != node {
			continue
		}
		out := children[:0]
		for _, c := range children {
			if strings.HasPrefix(graph.TypeOf(c), prefix) {
				continue
			}
			out = append(out, c)
		}
		t.GraphDict[parent] = out
	}
	for parent, children := range t.GraphDict {
		if !strings.HasPrefix(graph.TypeOf(parent), prefix) {
			continue
		}
		t.RemoveEdge(parent, node)
	}
}

func expandWildcard(t *graph.TfData, pattern string) []string {
	if !strings.HasSuffix(pattern, "*") {
		return []string{pattern}
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for _, id := range t.Nodes() {
		if strings.HasPrefix(id, prefix) {
			out = append(out, id)
		}
	}
	return out
}

func setEdgeLabel(t *graph.TfData, src, dst, label string) {
	md := t.MetaData[src]
	if md == nil {
		md = graph.Metadata{}
	}
	labels, _ := md["edge_labels"].Map()
	if labels == nil {
		labels = map[string]tfvalue.Value{}
	}
	labels[dst] = tfvalue.String(label)
	md["edge_labels"] = tfvalue.Map(labels)
	t.MetaData[src] = md
}

func toGraphMetadata(m map[string]tfvalue.Value) graph.Metadata {
	out := graph.Metadata{}
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeMetadataDeep merges src into dst; when both sides hold a map at the
// same key the maps themselves are merged rather than one overwriting the
// other, per modify_metadata's nested-merge behavior (SPEC_FULL §3).
func mergeMetadataDeep(dst, src graph.Metadata) graph.Metadata {
	if dst == nil {
		dst = graph.Metadata{}
	}
	for k, v := range src {
		existing, hasExisting := dst[k]
		existingMap, existingIsMap := existing.Map()
		newMap, newIsMap := v.Map()
		if hasExisting && existingIsMap && newIsMap {
			merged := map[string]tfvalue.Value{}
			for mk, mv := range existingMap {
				merged[mk] = mv
			}
			for mk, mv := range newMap {
				merged[mk] = mv
			}
			dst[k] = tfvalue.Map(merged)
			continue
		}
		dst[k] = v
	}
	return dst
}
