package pipeline

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runMultiInstanceExpander is C10: for every node with integer count >= 2
// that is not already numbered and is not a shared service or a
// SPECIAL_RESOURCES entry (those expand themselves in C9), create
// numbered clones and rewire parents/children deterministically (§4.10).
//
// Security groups get special treatment: an SG whose parent has count N
// is cloned N times even without its own count, because each replicated
// subnet needs its own visual SG container.
func runMultiInstanceExpander(t *graph.TfData, tables *provider.Tables) error {
	specialPrefixes := make(map[string]bool, len(tables.SpecialResources))
	for _, spec := range tables.SpecialResources {
		specialPrefixes[spec.Prefix] = true
	}

	ids := append([]string{}, t.NodeList...)
	for _, id := range ids {
		if t.Hidden[id] || graph.CloneIndex(id) != 0 {
			continue
		}
		typ := graph.TypeOf(id)
		if tables.SharedServices[typ] || specialPrefixes[typ] {
			continue
		}
		md := t.MetaData[id]
		count, ok := md["count"].Int()
		if !ok || count < 2 {
			continue
		}
		expandNode(t, tables, id, int(count))
	}

	expandSecurityGroupsForClonedParents(t, tables)
	return nil
}

func expandNode(t *graph.TfData, tables *provider.Tables, id string, count int) {
	md := t.MetaData[id]
	children := append([]string{}, t.GraphDict[id]...)
	parents := parentsOf(t, id)

	for i := 1; i <= count; i++ {
		clone := graph.CloneID(id, i)
		t.EnsureNode(clone, md.Clone())

		for _, child := range children {
			childTarget := child
			if shouldNumberChild(t, tables, child) {
				childTarget = graph.CloneID(child, i)
				t.EnsureNode(childTarget, t.MetaData[child].Clone())
			}
			t.AddEdge(clone, childTarget)
		}
		for _, parent := range parents {
			parentSource := parent
			if graph.CloneIndex(parent) == 0 {
				if pc, ok := t.MetaData[parent]["count"].Int(); ok && pc >= 2 {
					parentSource = graph.CloneID(parent, i)
				}
			}
			t.AddEdge(parentSource, clone)
		}
	}
	t.DeleteNode(id)
}

// shouldNumberChild reports whether a child of a cloned node should itself
// be numbered: either it is itself eligible for cloning (count >= 2), or
// any of its parents has a count (§4.10 step 2).
func shouldNumberChild(t *graph.TfData, tables *provider.Tables, child string) bool {
	if count, ok := t.MetaData[child]["count"].Int(); ok && count >= 2 {
		return true
	}
	for _, p := range parentsOf(t, child) {
		if count, ok := t.MetaData[p]["count"].Int(); ok && count >= 2 {
			return true
		}
	}
	return false
}

func expandSecurityGroupsForClonedParents(t *graph.TfData, tables *provider.Tables) {
	for _, sg := range matchingNodes(t, "aws_security_group") {
		if graph.CloneIndex(sg) != 0 {
			continue
		}
		for _, parent := range parentsOf(t, sg) {
			n := graph.CloneIndex(parent)
			if n == 0 {
				continue
			}
			clone := graph.CloneID(strings.TrimSuffix(sg, "~0"), n)
			t.EnsureNode(clone, t.MetaData[sg].Clone())
			t.AddEdge(parent, clone)
			for _, child := range t.GraphDict[sg] {
				t.AddEdge(clone, child)
			}
			t.RemoveEdge(parent, sg)
		}
	}
}

// helper alias kept local to this file's vocabulary; provider.Tables is
// threaded through for future per-provider expansion exceptions.
var _ = provider.Tables{}
