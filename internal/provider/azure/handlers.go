package azure

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

func init() {
	provider.RegisterImperativeHandler("azure_nsg_wrap", nsgWrap)
}

// nsgWrap: when a resource's metadata references a network security group
// through an attribute whose name contains "network_security_group", the
// NSG becomes a container for that resource -- the resource moves inside
// the NSG, and the NSG replaces the resource in its former parents. An
// association resource is handled the same way as any other referencing
// resource: the association itself moves inside the NSG, and the resource
// it associates (e.g. a subnet) is not moved. This is the Azure analogue of AWS security-group
// wrapping (§4.9, "Security-group wrapping" generalized to the NSG
// placement asked for by this provider).
func nsgWrap(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, nsg := range append([]string{}, t.NodeList...) {
		if !strings.HasPrefix(graph.TypeOf(nsg), "azurerm_network_security_group") {
			continue
		}
		for _, id := range t.NodeList {
			if id == nsg || strings.HasPrefix(graph.TypeOf(id), "azurerm_network_security_group") {
				continue
			}
			md := t.MetaData[id]
			refs := collectNSGReferences(md)
			for _, ref := range refs {
				if !strings.Contains(ref, graph.NameOf(nsg)) {
					continue
				}
				for _, parent := range parentsOf(t, id) {
					t.RemoveEdge(parent, id)
					t.AddEdge(parent, nsg)
				}
				t.AddEdge(nsg, id)
			}
		}
	}
	return nil
}

func collectNSGReferences(md graph.Metadata) []string {
	var out []string
	for k, v := range md {
		if strings.Contains(k, "network_security_group") {
			if l, ok := v.List(); ok {
				for _, e := range l {
					out = append(out, e.AsString())
				}
			} else {
				out = append(out, v.AsString())
			}
		}
	}
	return out
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
