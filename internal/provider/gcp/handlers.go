package gcp

import (
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func init() {
	provider.RegisterImperativeHandler("gcp_subnet_region_insertion", subnetRegionInsertion)
	provider.RegisterImperativeHandler("gcp_instance_zone_insertion", instanceZoneInsertion)
	provider.RegisterImperativeHandler("gcp_lb_zone_grouping", lbZoneGrouping)
}

func regionSlug(region string) string {
	return strings.ReplaceAll(region, "-", "_")
}

// subnetRegionInsertion: for each subnetwork, synthesize
// tv_gcp_region.<region>, place the subnetwork inside the region, and the
// region inside the network (§4.9 "Subnet -> Region insertion").
func subnetRegionInsertion(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, subnet := range append([]string{}, t.NodeList...) {
		if !strings.HasPrefix(graph.TypeOf(subnet), "google_compute_subnetwork") {
			continue
		}
		region := t.MetaData[subnet]["region"].AsString()
		if region == "" {
			continue
		}
		regionID := "tv_gcp_region." + regionSlug(region)
		t.EnsureNode(regionID, graph.Metadata{
			"name": tfvalue.String(regionSlug(region)),
			"type": tfvalue.String("tv_gcp_region"),
		})
		for _, network := range parentsMatching(t, subnet, "google_compute_network") {
			t.RemoveEdge(network, subnet)
			t.AddEdge(network, regionID)
		}
		t.AddEdge(regionID, subnet)
	}
	return nil
}

// instanceZoneInsertion: for each instance group manager, synthesize
// tv_gcp_zone.<zone>, unique per parent subnet since several subnets may
// share a physical zone (§4.9 "Instance -> Zone insertion").
func instanceZoneInsertion(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, igm := range append([]string{}, t.NodeList...) {
		if !strings.HasPrefix(graph.TypeOf(igm), "google_compute_instance_group_manager") {
			continue
		}
		zone := t.MetaData[igm]["zone"].AsString()
		if zone == "" {
			continue
		}
		for _, subnet := range parentsMatching(t, igm, "google_compute_subnetwork") {
			zoneID := "tv_gcp_zone." + regionSlug(zone) + "_in_" + graph.NameOf(subnet)
			t.EnsureNode(zoneID, graph.Metadata{
				"name": tfvalue.String(regionSlug(zone)),
				"type": tfvalue.String("tv_gcp_zone"),
			})
			t.RemoveEdge(subnet, igm)
			t.AddEdge(subnet, zoneID)
			t.AddEdge(zoneID, igm)
		}
	}
	return nil
}

// lbZoneGrouping: synthesizes tv_gcp_load_balancer.* containing forwarding
// rules, URL maps, backend services, and health checks that share a common
// name prefix; preserves outgoing edges to backends and restores the
// forwarding-rule -> target-proxy -> URL-map -> backend-service chain when
// the planner showed those as computed references (§4.9 "Load-balancer zone
// grouping (GCP)").
func lbZoneGrouping(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	lbComponentPrefixes := []string{
		"google_compute_forwarding_rule",
		"google_compute_global_forwarding_rule",
		"google_compute_target_http_proxy",
		"google_compute_target_https_proxy",
		"google_compute_url_map",
		"google_compute_backend_service",
		"google_compute_health_check",
	}

	for _, rule := range append([]string{}, t.NodeList...) {
		typ := graph.TypeOf(rule)
		if typ != "google_compute_forwarding_rule" && typ != "google_compute_global_forwarding_rule" {
			continue
		}
		name := graph.NameOf(rule)
		lbID := "tv_gcp_load_balancer." + name

		var members []string
		for _, id := range t.Nodes() {
			if !strings.HasPrefix(graph.NameOf(id), name) {
				continue
			}
			for _, prefix := range lbComponentPrefixes {
				if strings.HasPrefix(graph.TypeOf(id), prefix) {
					members = append(members, id)
					break
				}
			}
		}
		if len(members) == 0 {
			continue
		}

		t.EnsureNode(lbID, graph.Metadata{
			"name": tfvalue.String(name),
			"type": tfvalue.String("tv_gcp_load_balancer"),
		})
		for _, m := range members {
			for _, parent := range parentsOf(t, m) {
				if parent == lbID {
					continue
				}
				t.RemoveEdge(parent, m)
			}
			t.AddEdge(lbID, m)
		}
		restoreLBChain(t, lbID, members)
	}
	return nil
}

// restoreLBChain rewires the canonical GCP load-balancer member chain
// (forwarding rule -> target proxy -> URL map -> backend service) among the
// members grouped under lbID, in case the planner only recorded reference
// attributes rather than graph edges between them.
func restoreLBChain(t *graph.TfData, lbID string, members []string) {
	byType := map[string][]string{}
	for _, m := range members {
		typ := graph.TypeOf(m)
		byType[typ] = append(byType[typ], m)
	}
	chain := [][2]string{
		{"google_compute_forwarding_rule", "google_compute_target_http_proxy"},
		{"google_compute_forwarding_rule", "google_compute_target_https_proxy"},
		{"google_compute_global_forwarding_rule", "google_compute_target_http_proxy"},
		{"google_compute_global_forwarding_rule", "google_compute_target_https_proxy"},
		{"google_compute_target_http_proxy", "google_compute_url_map"},
		{"google_compute_target_https_proxy", "google_compute_url_map"},
		{"google_compute_url_map", "google_compute_backend_service"},
		{"google_compute_backend_service", "google_compute_health_check"},
	}
	for _, link := range chain {
		for _, from := range byType[link[0]] {
			for _, to := range byType[link[1]] {
				t.AddEdge(from, to)
			}
		}
	}
	_ = lbID
}

func parentsMatching(t *graph.TfData, id, typePrefix string) []string {
	var out []string
	for parent, children := range t.GraphDict {
		if !strings.HasPrefix(graph.TypeOf(parent), typePrefix) {
			continue
		}
		for _, c := range children {
			if c == id {
				out = append(out, parent)
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
