// Package azure supplies the Azure provider rule tables, the third
// provider alongside internal/provider/aws and internal/provider/gcp. Azure
// needs one hand-coded imperative handler beyond the declarative
// vocabulary: network-security-group placement, the Azure analogue of
// AWS's security-group wrapping.
package azure

import (
	"github.com/patrickchugh/terravision-core/internal/provider"
)

func init() {
	if err := provider.Default.Register(Tables()); err != nil {
		panic(err)
	}
}

func Tables() *provider.Tables {
	return &provider.Tables{
		Name:                  "azure",
		ConsolidatedNodes:     consolidatedNodes(),
		GroupNodes:            groupNodes(),
		EdgeNodes:             map[string]bool{},
		OuterNodes:            boolSet("azurerm_resource_group", "azurerm_virtual_network"),
		AutoAnnotations:       autoAnnotations(),
		NodeVariants:          []provider.NodeVariant{},
		ReverseArrowList:      reverseArrowList(),
		ForcedDest:            map[string]string{},
		ForcedOrigin:          map[string]string{},
		ImpliedConnections:    map[string]string{},
		SpecialResources:      specialResources(),
		SharedServices:        sharedServices(),
		AlwaysDrawLine:        map[string]bool{},
		NeverDrawLine:         map[string]bool{},
		DisconnectList:        [][2]string{},
		NameReplacements:      map[string]string{},
		MultiInstancePatterns: multiInstancePatterns(),
	}
}

func consolidatedNodes() map[string]string {
	return map[string]string{
		"azurerm_monitor":     "azurerm_monitor_diagnostic_setting.monitor",
		"azurerm_key_vault":   "azurerm_key_vault.vault",
		"azurerm_log_analytics": "azurerm_log_analytics_workspace.logs",
	}
}

func groupNodes() map[string]bool {
	return boolSet(
		"azurerm_resource_group", "azurerm_virtual_network", "azurerm_subnet",
		"azurerm_network_security_group", "azurerm_kubernetes_cluster",
		"azurerm_availability_set",
	)
}

func reverseArrowList() []provider.ReverseArrowEntry {
	order := []string{
		"azurerm_resource_group",
		"azurerm_virtual_network",
		"azurerm_subnet",
		"azurerm_network_security_group",
		"azurerm_kubernetes_cluster",
		"azurerm_lb",
		"azurerm_application_gateway",
	}
	out := make([]provider.ReverseArrowEntry, len(order))
	for i, p := range order {
		out[i] = provider.ReverseArrowEntry{TypePrefix: p}
	}
	return out
}

func autoAnnotations() []provider.AutoAnnotation {
	return []provider.AutoAnnotation{
		{
			Prefix:    "azurerm_lb",
			Target:    "tv_azure_users.users",
			Direction: "reverse",
		},
		{
			Prefix:    "azurerm_application_gateway",
			Target:    "tv_azure_users.users",
			Direction: "reverse",
		},
	}
}

func sharedServices() map[string]bool {
	return boolSet(
		"azurerm_key_vault", "azurerm_log_analytics_workspace",
		"azurerm_monitor_diagnostic_setting", "azurerm_container_registry",
	)
}

func multiInstancePatterns() map[string]string {
	return map[string]string{
		"azurerm_lb":                         "frontend_ip_configuration",
		"azurerm_kubernetes_cluster_node_pool": "vnet_subnet_id",
	}
}

// specialResources is SPECIAL_RESOURCES (§4.9): NSG placement is the one
// Azure case that needs hand-coded graph surgery rather than a declarative
// op, mirroring AWS security-group wrapping. The multi-instance entries are
// generated from multiInstancePatterns so that table's declared trigger
// attributes reach C9 instead of sitting unread.
func specialResources() []provider.HandlerSpec {
	specs := []provider.HandlerSpec{
		{
			Prefix:            "azurerm_network_security_group",
			ImperativeHandler: "azure_nsg_wrap",
			ExecutionOrder:    "after",
		},
		{
			Prefix: "azurerm_subnet_network_security_group_association",
			Ops: []provider.HandlerOp{
				{Op: "delete_nodes", Params: map[string]string{
					"pattern": "azurerm_subnet_network_security_group_association",
				}},
			},
		},
	}
	specs = append(specs, provider.ExpandSpecsFromPatterns(multiInstancePatterns())...)
	return specs
}

func boolSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
