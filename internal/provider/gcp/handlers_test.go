package gcp

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func TestSubnetRegionInsertionSynthesizesRegionNode(t *testing.T) {
	g := graph.New()
	g.EnsureNode("google_compute_network.main", graph.Metadata{
		"name": tfvalue.String("main"), "type": tfvalue.String("google_compute_network"),
	})
	g.EnsureNode("google_compute_subnetwork.web", graph.Metadata{
		"name": tfvalue.String("web"), "type": tfvalue.String("google_compute_subnetwork"),
		"region": tfvalue.String("us-central1"),
	})
	g.AddEdge("google_compute_network.main", "google_compute_subnetwork.web")

	if err := subnetRegionInsertion(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	regionID := "tv_gcp_region.us_central1"
	if _, ok := g.MetaData[regionID]; !ok {
		t.Fatalf("expected synthesized region node %q", regionID)
	}
	found := false
	for _, c := range g.GraphDict["google_compute_network.main"] {
		if c == regionID {
			found = true
		}
	}
	if !found {
		t.Fatal("network must point at the region node instead of the subnetwork directly")
	}
	nested := false
	for _, c := range g.GraphDict[regionID] {
		if c == "google_compute_subnetwork.web" {
			nested = true
		}
	}
	if !nested {
		t.Fatal("subnetwork must be nested under the region node")
	}
}

func TestInstanceZoneInsertionIsUniquePerSubnet(t *testing.T) {
	g := graph.New()
	g.EnsureNode("google_compute_subnetwork.a", graph.Metadata{
		"name": tfvalue.String("a"), "type": tfvalue.String("google_compute_subnetwork"),
	})
	g.EnsureNode("google_compute_subnetwork.b", graph.Metadata{
		"name": tfvalue.String("b"), "type": tfvalue.String("google_compute_subnetwork"),
	})
	g.EnsureNode("google_compute_instance_group_manager.app", graph.Metadata{
		"name": tfvalue.String("app"), "type": tfvalue.String("google_compute_instance_group_manager"),
		"zone": tfvalue.String("us-central1-a"),
	})
	g.AddEdge("google_compute_subnetwork.a", "google_compute_instance_group_manager.app")
	g.AddEdge("google_compute_subnetwork.b", "google_compute_instance_group_manager.app")

	if err := instanceZoneInsertion(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zoneA := "tv_gcp_zone.us_central1_a_in_a"
	zoneB := "tv_gcp_zone.us_central1_a_in_b"
	if _, ok := g.MetaData[zoneA]; !ok {
		t.Fatalf("expected zone node scoped to subnet a: %q", zoneA)
	}
	if _, ok := g.MetaData[zoneB]; !ok {
		t.Fatalf("expected zone node scoped to subnet b: %q", zoneB)
	}
}

func TestLBZoneGroupingRestoresChainAndGroups(t *testing.T) {
	g := graph.New()
	g.EnsureNode("google_compute_global_forwarding_rule.web", graph.Metadata{
		"name": tfvalue.String("web"), "type": tfvalue.String("google_compute_global_forwarding_rule"),
	})
	g.EnsureNode("google_compute_target_https_proxy.web", graph.Metadata{
		"name": tfvalue.String("web-proxy"), "type": tfvalue.String("google_compute_target_https_proxy"),
	})
	g.EnsureNode("google_compute_url_map.web", graph.Metadata{
		"name": tfvalue.String("web-map"), "type": tfvalue.String("google_compute_url_map"),
	})
	g.EnsureNode("google_compute_backend_service.web", graph.Metadata{
		"name": tfvalue.String("web-backend"), "type": tfvalue.String("google_compute_backend_service"),
	})

	if err := lbZoneGrouping(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lbID := "tv_gcp_load_balancer.web"
	if _, ok := g.MetaData[lbID]; !ok {
		t.Fatalf("expected load balancer group node %q", lbID)
	}
	for _, member := range []string{
		"google_compute_global_forwarding_rule.web",
		"google_compute_target_https_proxy.web",
		"google_compute_url_map.web",
		"google_compute_backend_service.web",
	} {
		found := false
		for _, c := range g.GraphDict[lbID] {
			if c == member {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q grouped under %q", member, lbID)
		}
	}

	chainFound := false
	for _, c := range g.GraphDict["google_compute_target_https_proxy.web"] {
		if c == "google_compute_url_map.web" {
			chainFound = true
		}
	}
	if !chainFound {
		t.Fatal("expected proxy -> url map chain edge to be restored")
	}
}
