package pipeline

import (
	"net/netip"
	"strings"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
)

// runBaseGraphBuilder is C4: reads Input B's low-level dependency edges and
// builds the first-draft graphdict, applying REVERSE_ARROW_LIST and the
// implicit VPC/subnet CIDR-containment rule, then snapshots
// original_graphdict/original_metadata (§4.4).
func runBaseGraphBuilder(t *graph.TfData, in *Input, tables *provider.Tables) error {
	byLabel := map[int]string{}
	for _, obj := range in.LowLevel.Objects {
		byLabel[obj.GVID] = graph.NormalizeID(obj.Label)
	}

	for _, e := range in.LowLevel.Edges {
		head, hok := byLabel[e.Head]
		tail, tok := byLabel[e.Tail]
		if !hok || !tok {
			continue
		}
		if _, ok := t.GraphDict[head]; !ok {
			continue
		}
		if _, ok := t.GraphDict[tail]; !ok {
			continue
		}

		tailType := graph.TypeOf(tail)
		if isInReverseList(tables, tailType) {
			t.AddEdge(tail, head)
		} else {
			t.AddEdge(head, tail)
		}
	}

	applyVPCSubnetCIDRContainment(t)

	t.SnapshotOriginal()
	return nil
}

func isInReverseList(tables *provider.Tables, typ string) bool {
	return tables.ReverseArrowRank(typ) >= 0
}

// applyVPCSubnetCIDRContainment adds aws_vpc.X -> aws_subnet.Y whenever the
// subnet's vpc_id names the VPC or, failing that, the subnet's cidr_block
// is contained in the VPC's, per §4.4's additional implicit rule. Only
// aws_vpc/aws_subnet nodes are considered; Azure and GCP network/subnet
// hierarchies are not handled here.
func applyVPCSubnetCIDRContainment(t *graph.TfData) {
	var vpcs, subnets []string
	for _, id := range t.Nodes() {
		switch {
		case strings.HasPrefix(graph.TypeOf(id), "aws_vpc"):
			vpcs = append(vpcs, id)
		case strings.HasPrefix(graph.TypeOf(id), "aws_subnet"):
			subnets = append(subnets, id)
		}
	}

	for _, subnet := range subnets {
		md := t.MetaData[subnet]
		subnetCIDR := md["cidr_block"].AsString()
		if vpcID := md["vpc_id"].AsString(); vpcID != "" {
			if target := findByReferencedID(t, vpcID, vpcs); target != "" {
				t.AddEdge(target, subnet)
				continue
			}
		}
		if subnetCIDR == "" {
			continue
		}
		for _, vpc := range vpcs {
			vpcCIDR := t.MetaData[vpc]["cidr_block"].AsString()
			if vpcCIDR != "" && cidrContains(vpcCIDR, subnetCIDR) {
				t.AddEdge(vpc, subnet)
			}
		}
	}
}

func findByReferencedID(t *graph.TfData, ref string, candidates []string) string {
	for _, c := range candidates {
		if strings.Contains(ref, c) || strings.HasSuffix(ref, graph.NameOf(c)) {
			return c
		}
	}
	return ""
}

// cidrContains reports whether the child prefix is a refinement of the
// parent prefix ("is the subnet's range inside the VPC's"); unparsable
// CIDR strings are never contained.
func cidrContains(parentCIDR, childCIDR string) bool {
	parent, err := netip.ParsePrefix(parentCIDR)
	if err != nil {
		return false
	}
	child, err := netip.ParsePrefix(childCIDR)
	if err != nil {
		return false
	}
	return child.Bits() >= parent.Bits() && parent.Contains(child.Addr())
}

func prefixOctets(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) < 2 {
		return ip
	}
	return parts[0] + "." + parts[1]
}
