package aws

import (
	"sort"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func init() {
	provider.RegisterImperativeHandler("aws_subnet_az_insertion", subnetAZInsertion)
	provider.RegisterImperativeHandler("aws_security_group_wrap", securityGroupWrap)
	provider.RegisterImperativeHandler("aws_lb_variant_rewire", lbVariantRewire)
	provider.RegisterImperativeHandler("aws_eks_cluster_grouping", eksClusterGrouping)
	provider.RegisterImperativeHandler("aws_helm_release_handling", helmReleaseHandling)
	provider.RegisterImperativeHandler("aws_waf_association", wafAssociation)
	provider.RegisterIntermediateNodeGenerator("generate_az_node_name", generateAZNodeName)
}

func azSlug(az string) string {
	return strings.ReplaceAll(az, "-", "_")
}

func generateAZNodeName(t *graph.TfData, child string) string {
	md := t.MetaData[child]
	az := md["availability_zone_id"].AsString()
	if az == "" {
		az = md["availability_zone"].AsString()
	}
	if az == "" {
		return ""
	}
	return "aws_az.availability_zone_" + azSlug(az)
}

// subnetAZInsertion: for each subnet, synthesize aws_az.availability_zone_*,
// place the subnet inside the AZ, and the AZ inside the VPC. Tie-break by
// availability_zone_id when present (§4.9 "Subnet -> AZ insertion").
func subnetAZInsertion(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, subnet := range append([]string{}, t.NodeList...) {
		if !strings.HasPrefix(graph.TypeOf(subnet), "aws_subnet") {
			continue
		}
		azID := generateAZNodeName(t, subnet)
		if azID == "" {
			continue
		}
		vpcParents := parentsMatching(t, subnet, "aws_vpc")
		t.EnsureNode(azID, graph.Metadata{
			"name": tfvalue.String(strings.TrimPrefix(azID, "aws_az.")),
			"type": tfvalue.String("aws_az"),
		})
		for _, vpc := range vpcParents {
			t.RemoveEdge(vpc, subnet)
			t.AddEdge(vpc, azID)
		}
		t.AddEdge(azID, subnet)
	}
	return nil
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

// securityGroupWrap: when a resource references a security group, the SG
// becomes a container for that resource — the resource moves inside the
// SG, and the SG replaces the resource in its former parents (§4.9
// "Security-group wrapping"). Security-group *rule* resources are
// resolved to the groups they belong to and removed as first-class nodes.
func securityGroupWrap(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, rule := range matchingPrefix(t, "aws_security_group_rule") {
		md := t.MetaData[rule]
		sgRef := md["security_group_id"].AsString()
		sg := findNodeReferencedBy(t, sgRef, "aws_security_group")
		if sg != "" {
			for _, parent := range parentsOf2(t, rule) {
				t.AddEdge(parent, sg)
			}
		}
		t.DeleteNode(rule)
	}

	for _, sg := range append([]string{}, t.NodeList...) {
		if !strings.HasPrefix(graph.TypeOf(sg), "aws_security_group") {
			continue
		}
		for _, id := range t.NodeList {
			if id == sg || strings.HasPrefix(graph.TypeOf(id), "aws_security_group") {
				continue
			}
			md := t.MetaData[id]
			refs := collectSGReferences(md)
			for _, ref := range refs {
				if !strings.Contains(ref, graph.NameOf(sg)) {
					continue
				}
				for _, parent := range parentsOf2(t, id) {
					t.RemoveEdge(parent, id)
					t.AddEdge(parent, sg)
				}
				t.AddEdge(sg, id)
			}
		}
	}
	return nil
}

func collectSGReferences(md graph.Metadata) []string {
	var out []string
	for k, v := range md {
		if strings.Contains(k, "security_group") {
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

func findNodeReferencedBy(t *graph.TfData, ref, typePrefix string) string {
	if ref == "" {
		return ""
	}
	for _, id := range t.Nodes() {
		if strings.HasPrefix(graph.TypeOf(id), typePrefix) && strings.Contains(ref, graph.NameOf(id)) {
			return id
		}
	}
	return ""
}

func matchingPrefix(t *graph.TfData, prefix string) []string {
	var out []string
	for _, id := range t.Nodes() {
		if strings.HasPrefix(graph.TypeOf(id), prefix) {
			out = append(out, id)
		}
	}
	return out
}

func parentsOf2(t *graph.TfData, id string) []string {
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

// lbVariantRewire: resolves each load balancer's `subnets` attribute to the
// known subnet nodes it spans. Spanning two or more subnets (the Multi-AZ
// case, §8 scenario 2) creates one numbered clone per subnet -- each
// carrying its own copy of the LB's listeners/target groups -- places the
// clone inside its subnet, and removes the un-numbered original. A
// single-subnet (or subnet-less) LB is left as one node. Either way,
// reverse edges from compute resources back to the LB are dropped: a
// backend referencing its LB as a child is a visualization artifact, not a
// real containment edge.
func lbVariantRewire(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	var lbs []string
	for _, id := range t.NodeList {
		if graph.CloneIndex(id) != 0 {
			continue
		}
		typ := graph.TypeOf(id)
		if typ == "aws_lb" || typ == "aws_alb" || typ == "aws_nlb" || typ == "aws_elb" {
			lbs = append(lbs, id)
		}
	}
	sort.Strings(lbs)

	for _, lb := range lbs {
		removeLBReverseEdges(t, lb)

		subnets := resolveSubnets(t, t.MetaData[lb]["subnets"])
		if len(subnets) < 2 {
			continue
		}
		sort.Strings(subnets)

		children := append([]string{}, t.GraphDict[lb]...)
		parents := parentsOf2(t, lb)

		for i, subnet := range subnets {
			clone := graph.CloneID(lb, i+1)
			t.EnsureNode(clone, t.MetaData[lb].Clone())
			for _, parent := range parents {
				t.AddEdge(parent, clone)
			}
			t.AddEdge(subnet, clone)
			for _, child := range children {
				childClone := graph.CloneID(child, i+1)
				t.EnsureNode(childClone, t.MetaData[child].Clone())
				t.AddEdge(clone, childClone)
			}
		}
		t.DeleteNode(lb)
		for _, child := range children {
			t.DeleteNode(child)
		}
	}
	return nil
}

// removeLBReverseEdges strips edges from an LB's children back to the LB
// itself -- a backend node that also points at its own load balancer is a
// planner artifact, not a containment relationship.
func removeLBReverseEdges(t *graph.TfData, lb string) {
	for _, child := range append([]string{}, t.GraphDict[lb]...) {
		t.RemoveEdge(child, lb)
	}
}

// resolveSubnets maps an attribute holding subnet references (a list or a
// single reference expression) to the matching subnet node IDs.
func resolveSubnets(t *graph.TfData, attr tfvalue.Value) []string {
	var refs []tfvalue.Value
	if l, ok := attr.List(); ok {
		refs = l
	} else if s := attr.AsString(); s != "" {
		refs = []tfvalue.Value{attr}
	}

	var subnets []string
	seen := map[string]bool{}
	for _, r := range refs {
		ref := r.AsString()
		for _, id := range t.Nodes() {
			if !seen[id] && strings.Contains(graph.TypeOf(id), "subnet") && strings.Contains(ref, graph.NameOf(id)) {
				seen[id] = true
				subnets = append(subnets, id)
			}
		}
	}
	return subnets
}

// eksClusterGrouping: creates an enclosing service group around the
// control plane and leaves node groups/Fargate profiles in their subnets
// (§4.9 "EKS / GKE cluster grouping"). Karpenter detection happens in
// helmReleaseHandling, which runs after this handler in SpecialResources
// order.
func eksClusterGrouping(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, cluster := range matchingPrefix(t, "aws_eks_cluster") {
		groupID := "tv_aws_eks_service." + graph.NameOf(cluster)
		t.EnsureNode(groupID, graph.Metadata{
			"name": tfvalue.String(graph.NameOf(cluster)),
			"type": tfvalue.String("tv_aws_eks_service"),
		})
		for _, parent := range parentsOf2(t, cluster) {
			t.RemoveEdge(parent, cluster)
			t.AddEdge(parent, groupID)
		}
		t.AddEdge(groupID, cluster)
	}
	return nil
}

// helmReleaseHandling: inspects `chart` metadata; a Karpenter chart
// synthesizes tv_aws_karpenter.* siblings of the cluster, other charts add
// an edge to the first cluster (§4.9 "Helm release handling", §8 scenario
// 4).
func helmReleaseHandling(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	cluster := firstOfPrefix(t, "aws_eks_cluster")
	for _, release := range matchingPrefix(t, "aws_helm_release") {
		chart := strings.ToLower(t.MetaData[release]["chart"].AsString())
		if strings.Contains(chart, "karpenter") {
			if cluster == "" {
				continue
			}
			n := t.MetaData[cluster]["count"]
			count, _ := n.Int()
			if count < 1 {
				count = 1
			}
			for i := int64(1); i <= count; i++ {
				clone := "tv_aws_karpenter.karpenter~" + itoa(i)
				t.EnsureNode(clone, graph.Metadata{"type": tfvalue.String("tv_aws_karpenter")})
				for _, parent := range parentsOf2(t, cluster) {
					t.AddEdge(parent, clone)
				}
			}
			t.DeleteNode(release)
			continue
		}
		if cluster != "" {
			t.AddEdge(cluster, release)
		}
	}
	return nil
}

func itoa(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func firstOfPrefix(t *graph.TfData, prefix string) string {
	m := matchingPrefix(t, prefix)
	if len(m) == 0 {
		return ""
	}
	return m[0]
}

// wafAssociation: parses wafv2_web_acl_association resources and connects
// WAF -> protected resource (ALB/CloudFront/API Gateway), removing any
// reverse edges (§4.9 "WAF-WebACL associations").
func wafAssociation(t *graph.TfData, tables *provider.Tables, spec provider.HandlerSpec) error {
	for _, assoc := range matchingPrefix(t, "aws_wafv2_web_acl_association") {
		md := t.MetaData[assoc]
		wafRef := md["web_acl_arn"].AsString()
		resourceRef := md["resource_arn"].AsString()

		waf := findNodeReferencedBy(t, wafRef, "aws_wafv2_web_acl")
		protected := findProtectedResource(t, resourceRef)

		if waf != "" && protected != "" {
			t.RemoveEdge(protected, waf)
			t.AddEdge(waf, protected)
		}
		t.DeleteNode(assoc)
	}
	return nil
}

func findProtectedResource(t *graph.TfData, ref string) string {
	for _, prefix := range []string{"aws_lb", "aws_alb", "aws_cloudfront_distribution", "aws_api_gateway_rest_api"} {
		if id := findNodeReferencedBy(t, ref, prefix); id != "" {
			return id
		}
	}
	return ""
}
