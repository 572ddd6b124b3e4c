package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runResourceHandlers is C9: the per-resource-type engine. Handlers run in
// SpecialResources table order (stable, not node_list hash order) so a
// given run is deterministic; within one handler its declarative ops run
// strictly sequentially, and its imperative code runs before or after
// them per ExecutionOrder (§4.9).
func runResourceHandlers(t *graph.TfData, tables *provider.Tables) error {
	specialPrefixes := make(map[string]bool, len(tables.SpecialResources))
	for _, spec := range tables.SpecialResources {
		specialPrefixes[spec.Prefix] = true
	}

	for _, spec := range tables.SpecialResources {
		if !anyNodeMatches(t, spec.Prefix) {
			continue
		}

		imperative := provider.ImperativeHandlers[spec.ImperativeHandler]

		if spec.ExecutionOrder == "before" && imperative != nil {
			if err := imperative(t, tables, spec); err != nil {
				return err
			}
		}

		for _, op := range spec.Ops {
			if err := applyOp(t, tables, spec, op); err != nil {
				return err
			}
		}

		if spec.ExecutionOrder != "before" && imperative != nil {
			if err := imperative(t, tables, spec); err != nil {
				return err
			}
		}
	}
	return nil
}

func anyNodeMatches(t *graph.TfData, prefix string) bool {
	for _, id := range t.NodeList {
		if strings.HasPrefix(graph.TypeOf(id), prefix) {
			return true
		}
	}
	return false
}

func matchingNodes(t *graph.TfData, pattern string) []string {
	var out []string
	for _, id := range t.Nodes() {
		if strings.Contains(id, pattern) {
			out = append(out, id)
		}
	}
	return out
}

// applyOp dispatches one declarative transformation op from the §4.9
// vocabulary.
func applyOp(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec, op provider.HandlerOp) error {
	switch op.Op {
	case "expand_to_numbered_instances":
		return opExpandToNumberedInstances(t, op)
	case "insert_intermediate_node":
		return opInsertIntermediateNode(t, op)
	case "move_to_parent":
		return opMoveToParent(t, op)
	case "delete_nodes":
		return opDeleteNodes(t, op)
	case "group_shared_services":
		return opGroupSharedServices(t, tables)
	case "link_via_shared_child":
		return opLinkViaSharedChild(t, op)
	case "link_peers_via_intermediary":
		return opLinkPeersViaIntermediary(t, op)
	case "bidirectional_link":
		return opBidirectionalLink(t, op)
	case "apply_resource_variants":
		return nil // handled by C8; declarative-config-driven variant is out of new scope here
	default:
		return fmt.Errorf("pipeline: unknown handler op %q", op.Op)
	}
}

// opExpandToNumberedInstances: for resources whose trigger attribute
// references multiple known subnets, create name~1..name~N per subnet in
// sorted order; each clone sits inside the matching subnet; original is
// deleted (§4.9).
func opExpandToNumberedInstances(t *graph.TfData, op provider.HandlerOp) error {
	triggerAttr := op.Params["attribute"]
	pattern := op.Params["pattern"]

	for _, id := range matchingNodes(t, pattern) {
		md := t.MetaData[id]
		refAttr, ok := md[triggerAttr]
		if !ok {
			continue
		}
		refs, _ := refAttr.List()
		var subnets []string
		seen := map[string]bool{}
		for _, r := range refs {
			for _, subnetID := range t.Nodes() {
				if !seen[subnetID] && strings.Contains(graph.TypeOf(subnetID), "subnet") &&
					strings.Contains(r.AsString(), graph.NameOf(subnetID)) {
					seen[subnetID] = true
					subnets = append(subnets, subnetID)
				}
			}
		}
		if len(subnets) < 2 {
			continue
		}
		sort.Strings(subnets)

		parents := parentsOf(t, id)
		for i, subnet := range subnets {
			clone := graph.CloneID(id, i+1)
			t.EnsureNode(clone, md.Clone())
			t.AddEdge(subnet, clone)
			for _, p := range parents {
				t.AddEdge(p, clone)
			}
		}
		t.DeleteNode(id)
	}
	return nil
}

func parentsOf(t *graph.TfData, id string) []string {
	var parents []string
	for parent, children := range t.GraphDict {
		for _, c := range children {
			if c == id {
				parents = append(parents, parent)
			}
		}
	}
	return parents
}

// opInsertIntermediateNode: between every (parent-pattern, child-pattern)
// edge, insert a synthetic node computed by a named generator; parent
// loses the direct edge, gains an edge to the intermediate, which gains an
// edge to the child (§4.9).
func opInsertIntermediateNode(t *graph.TfData, op provider.HandlerOp) error {
	parentPattern := op.Params["parent_pattern"]
	childPattern := op.Params["child_pattern"]
	generatorName := op.Params["generator"]
	generator := provider.IntermediateNodeGenerators[generatorName]
	if generator == nil {
		return fmt.Errorf("pipeline: unknown intermediate node generator %q", generatorName)
	}

	for _, parent := range matchingNodes(t, parentPattern) {
		for _, child := range append([]string{}, t.GraphDict[parent]...) {
			if !strings.Contains(child, childPattern) {
				continue
			}
			intermediate := generator(t, child)
			if intermediate == "" {
				continue
			}
			t.RemoveEdge(parent, child)
			t.AddEdge(parent, intermediate)
			t.AddEdge(intermediate, child)
		}
	}
	return nil
}

// opMoveToParent: reparents nodes matching a pattern from a
// `from_parent_pattern` to a `to_parent_pattern` (e.g. VPC endpoints from
// subnet to VPC, §4.9).
func opMoveToParent(t *graph.TfData, op provider.HandlerOp) error {
	nodePattern := op.Params["pattern"]
	fromPattern := op.Params["from_parent_pattern"]
	toPattern := op.Params["to_parent_pattern"]

	toParents := matchingNodes(t, toPattern)
	if len(toParents) == 0 {
		return nil
	}
	target := toParents[0]

	for _, from := range matchingNodes(t, fromPattern) {
		for _, child := range append([]string{}, t.GraphDict[from]...) {
			if !strings.Contains(child, nodePattern) {
				continue
			}
			t.RemoveEdge(from, child)
			t.AddEdge(target, child)
		}
	}
	return nil
}

// opDeleteNodes: drops all nodes matching a pattern, cleaning up parent
// adjacencies (§4.9).
func opDeleteNodes(t *graph.TfData, op provider.HandlerOp) error {
	pattern := op.Params["pattern"]
	for _, id := range matchingNodes(t, pattern) {
		t.DeleteNode(id)
	}
	return nil
}

// opGroupSharedServices: creates <provider>_group.shared_services
// containing every node whose type matches SHARED_SERVICES (§4.9).
func opGroupSharedServices(t *graph.TfData, tables *provider.Tables) error {
	var members []string
	for _, id := range t.Nodes() {
		if tables.SharedServices[graph.TypeOf(id)] {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return nil
	}
	groupID := tables.Name + "_group.shared_services"
	t.EnsureNode(groupID, graph.Metadata{})
	for _, m := range members {
		for parent, children := range t.GraphDict {
			if parent == groupID {
				continue
			}
			for _, c := range children {
				if c == m {
					t.RemoveEdge(parent, m)
				}
			}
		}
		t.AddEdge(groupID, m)
	}
	return nil
}

// opLinkViaSharedChild: if X -> A and B -> X, add A -> B directly
// (flattens intermediary hubs, §4.9). Does not delete X — see
// opLinkPeersViaIntermediary for the delete-the-hub variant.
func opLinkViaSharedChild(t *graph.TfData, op provider.HandlerOp) error {
	hubPattern := op.Params["pattern"]
	for _, x := range matchingNodes(t, hubPattern) {
		children := t.GraphDict[x]
		parents := parentsOf(t, x)
		for _, a := range children {
			for _, b := range parents {
				t.AddEdge(a, b)
			}
		}
	}
	return nil
}

// opLinkPeersViaIntermediary: if M -> A and M -> B, add A -> B and delete
// M (used for SQS<->Lambda event source mappings, §4.9 / §8 scenario 3).
func opLinkPeersViaIntermediary(t *graph.TfData, op provider.HandlerOp) error {
	hubPattern := op.Params["pattern"]
	for _, m := range matchingNodes(t, hubPattern) {
		children := append([]string{}, t.GraphDict[m]...)
		parents := parentsOf(t, m)
		for _, parent := range parents {
			for _, child := range children {
				t.AddEdge(parent, child)
			}
		}
		t.DeleteNode(m)
	}
	return nil
}

// opBidirectionalLink: adds both directions between two pattern-matched
// sets (§4.9); existing edges are kept, nothing is removed first.
func opBidirectionalLink(t *graph.TfData, op provider.HandlerOp) error {
	setA := matchingNodes(t, op.Params["pattern_a"])
	setB := matchingNodes(t, op.Params["pattern_b"])
	for _, a := range setA {
		for _, b := range setB {
			t.AddEdge(a, b)
			t.AddEdge(b, a)
		}
	}
	return nil
}

