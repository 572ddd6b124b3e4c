package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runVariantSelector is C8: renames a node to a more specific variant type
// based on a metadata keyword match, copying edges/metadata and rewriting
// every parent's reference (§4.8). Skips nodes already handled by
// SPECIAL_RESOURCES or already in the shared-services group.
func runVariantSelector(t *graph.TfData, tables *provider.Tables, specialPrefixes map[string]bool) error {
	for _, id := range append([]string{}, t.NodeList...) {
		if t.Hidden[id] {
			continue
		}
		typ := graph.TypeOf(id)
		if specialPrefixes[typ] {
			continue
		}
		if tables.SharedServices[typ] {
			continue
		}

		for _, variant := range tables.NodeVariants {
			if variant.BaseType != typ {
				continue
			}
			newType := matchVariantKeyword(t.MetaData[id], variant.Keywords)
			if newType == "" {
				continue
			}
			renameNode(t, id, newType+"."+graph.NameOf(id))
			break
		}
	}
	return nil
}

func matchVariantKeyword(md graph.Metadata, keywords map[string]string) string {
	for _, v := range md {
		text := strings.ToLower(v.AsString())
		for keyword, target := range keywords {
			if strings.Contains(text, keyword) {
				return target
			}
		}
	}
	return ""
}

// renameNode moves a node (and every reference to it) from oldID to
// newID, preserving metadata and adjacency; used by the variant selector.
func renameNode(t *graph.TfData, oldID, newID string) {
	if oldID == newID {
		return
	}
	md := t.MetaData[oldID]
	children := t.GraphDict[oldID]

	t.EnsureNode(newID, md)
	for _, c := range children {
		t.AddEdge(newID, c)
	}

	for parent, kids := range t.GraphDict {
		if parent == oldID {
			continue
		}
		for _, c := range kids {
			if c == oldID {
				t.AddEdge(parent, newID)
			}
		}
	}

	t.DeleteNode(oldID)
}
