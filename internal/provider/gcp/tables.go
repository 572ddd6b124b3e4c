// Package gcp supplies the GCP provider rule tables, following the same
// declarative-table-plus-imperative-handler split as internal/provider/aws,
// scaled down to the resource families named in §4.9: subnet->region
// insertion, instance-group->zone insertion, and load-balancer zone
// grouping.
package gcp

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
		Name:                  "gcp",
		ConsolidatedNodes:     map[string]string{},
		GroupNodes:            groupNodes(),
		EdgeNodes:             map[string]bool{},
		OuterNodes:            boolSet("tv_gcp_region", "google_compute_network"),
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
		MultiInstancePatterns: map[string]string{},
	}
}

func groupNodes() map[string]bool {
	return boolSet(
		"tv_gcp_region", "tv_gcp_zone", "tv_gcp_load_balancer",
		"google_compute_network", "google_compute_subnetwork",
		"google_compute_instance_group_manager",
	)
}

// reverseArrowList: region is outermost, then network, subnetwork, zone,
// instance groups, load balancer -- mirroring the AWS region/vpc/az/subnet
// nesting order.
func reverseArrowList() []provider.ReverseArrowEntry {
	order := []string{
		"tv_gcp_region",
		"google_compute_network",
		"google_compute_subnetwork",
		"tv_gcp_zone",
		"google_compute_instance_group_manager",
		"tv_gcp_load_balancer",
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
			Prefix:    "google_compute_global_forwarding_rule",
			Target:    "tv_gcp_users.users",
			Direction: "reverse",
		},
	}
}

func sharedServices() map[string]bool {
	return boolSet(
		"google_kms_crypto_key", "google_logging_project_sink",
		"google_artifact_registry_repository",
	)
}

// specialResources is SPECIAL_RESOURCES (§4.9): subnet->region insertion,
// instance-group->zone insertion, and forwarding-rule->LB zone grouping are
// all cases specific enough to need imperative handlers rather than the
// declarative op vocabulary.
func specialResources() []provider.HandlerSpec {
	return []provider.HandlerSpec{
		{
			Prefix:            "google_compute_subnetwork",
			ImperativeHandler: "gcp_subnet_region_insertion",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "google_compute_instance_group_manager",
			ImperativeHandler: "gcp_instance_zone_insertion",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "google_compute_forwarding_rule",
			ImperativeHandler: "gcp_lb_zone_grouping",
			ExecutionOrder:    "after",
		},
		{
			Prefix:            "google_compute_global_forwarding_rule",
			ImperativeHandler: "gcp_lb_zone_grouping",
			ExecutionOrder:    "after",
		},
	}
}

func boolSet(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
