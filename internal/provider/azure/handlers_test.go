package azure

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func TestNSGWrapMovesReferencingResourceInside(t *testing.T) {
	g := graph.New()
	g.EnsureNode("azurerm_virtual_network.main", graph.Metadata{
		"name": tfvalue.String("main"), "type": tfvalue.String("azurerm_virtual_network"),
	})
	g.EnsureNode("azurerm_network_security_group.web", graph.Metadata{
		"name": tfvalue.String("web"), "type": tfvalue.String("azurerm_network_security_group"),
	})
	g.EnsureNode("azurerm_network_interface.app", graph.Metadata{
		"name": tfvalue.String("app"), "type": tfvalue.String("azurerm_network_interface"),
		"network_security_group_id": tfvalue.String("nsg-web-ref"),
	})
	g.AddEdge("azurerm_virtual_network.main", "azurerm_network_interface.app")

	if err := nsgWrap(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrapped := false
	for _, c := range g.GraphDict["azurerm_network_security_group.web"] {
		if c == "azurerm_network_interface.app" {
			wrapped = true
		}
	}
	if !wrapped {
		t.Fatal("resource referencing the NSG must be nested under it")
	}
}
