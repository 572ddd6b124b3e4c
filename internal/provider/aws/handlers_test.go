package aws

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func TestSubnetAZInsertionSynthesizesAZNode(t *testing.T) {
	g := graph.New()
	g.EnsureNode("aws_vpc.main", graph.Metadata{
		"name": tfvalue.String("main"), "type": tfvalue.String("aws_vpc"),
	})
	g.EnsureNode("aws_subnet.public", graph.Metadata{
		"name": tfvalue.String("public"), "type": tfvalue.String("aws_subnet"),
		"availability_zone": tfvalue.String("us-east-1a"),
	})
	g.AddEdge("aws_vpc.main", "aws_subnet.public")

	if err := subnetAZInsertion(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	azID := "aws_az.availability_zone_us_east_1a"
	if _, ok := g.MetaData[azID]; !ok {
		t.Fatalf("expected synthesized AZ node %q", azID)
	}
	found := false
	for _, c := range g.GraphDict["aws_vpc.main"] {
		if c == azID {
			found = true
		}
	}
	if !found {
		t.Fatal("VPC must now point at the AZ node instead of the subnet directly")
	}
	subnetUnderAZ := false
	for _, c := range g.GraphDict[azID] {
		if c == "aws_subnet.public" {
			subnetUnderAZ = true
		}
	}
	if !subnetUnderAZ {
		t.Fatal("subnet must be nested under the AZ node")
	}
}

func TestSecurityGroupWrapMovesReferencingResourceInside(t *testing.T) {
	g := graph.New()
	g.EnsureNode("aws_vpc.main", graph.Metadata{
		"name": tfvalue.String("main"), "type": tfvalue.String("aws_vpc"),
	})
	g.EnsureNode("aws_security_group.web", graph.Metadata{
		"name": tfvalue.String("web"), "type": tfvalue.String("aws_security_group"),
	})
	g.EnsureNode("aws_instance.app", graph.Metadata{
		"name": tfvalue.String("app"), "type": tfvalue.String("aws_instance"),
		"vpc_security_group_ids": tfvalue.List([]tfvalue.Value{tfvalue.String("sg-web-ref")}),
	})
	g.AddEdge("aws_vpc.main", "aws_instance.app")

	if err := securityGroupWrap(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrapped := false
	for _, c := range g.GraphDict["aws_security_group.web"] {
		if c == "aws_instance.app" {
			wrapped = true
		}
	}
	if !wrapped {
		t.Fatal("instance referencing the security group must be nested under it")
	}
}

func TestLBVariantRewireClonesPerSubnetForMultiAZ(t *testing.T) {
	g := graph.New()
	g.EnsureNode("aws_subnet.a", graph.Metadata{
		"name": tfvalue.String("a"), "type": tfvalue.String("aws_subnet"),
	})
	g.EnsureNode("aws_subnet.b", graph.Metadata{
		"name": tfvalue.String("b"), "type": tfvalue.String("aws_subnet"),
	})
	g.EnsureNode("aws_lb.web", graph.Metadata{
		"name": tfvalue.String("web"), "type": tfvalue.String("aws_lb"),
		"subnets": tfvalue.List([]tfvalue.Value{
			tfvalue.String("subnet-a-ref"), tfvalue.String("subnet-b-ref"),
		}),
	})
	g.EnsureNode("aws_lb_listener.http", graph.Metadata{
		"name": tfvalue.String("http"), "type": tfvalue.String("aws_lb_listener"),
	})
	g.AddEdge("aws_lb.web", "aws_lb_listener.http")

	if err := lbVariantRewire(g, Tables(), provider.HandlerSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := g.MetaData["aws_lb.web"]; ok {
		t.Fatal("un-numbered original LB should have been replaced by per-subnet clones")
	}
	for i, subnet := range []string{"aws_subnet.a", "aws_subnet.b"} {
		clone := graph.CloneID("aws_lb.web", i+1)
		if _, ok := g.MetaData[clone]; !ok {
			t.Fatalf("expected clone %q", clone)
		}
		found := false
		for _, c := range g.GraphDict[subnet] {
			if c == clone {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q nested under %q", clone, subnet)
		}
		listenerClone := graph.CloneID("aws_lb_listener.http", i+1)
		hasListener := false
		for _, c := range g.GraphDict[clone] {
			if c == listenerClone {
				hasListener = true
			}
		}
		if !hasListener {
			t.Fatalf("expected %q to carry its own listener clone %q", clone, listenerClone)
		}
	}
}
