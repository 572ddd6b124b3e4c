package pipeline

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/graph"
	"github.com/patrickchugh/terravision-core/internal/provider"
	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

// TestExpandToNumberedInstancesSplitsAcrossSubnets exercises the generic
// multi-subnet expansion op that provider.ExpandSpecsFromPatterns wires up
// from a provider's MultiInstancePatterns table (e.g. an
// aws_autoscaling_group spanning several subnets via vpc_zone_identifier).
func TestExpandToNumberedInstancesSplitsAcrossSubnets(t *testing.T) {
	g := graph.New()
	g.EnsureNode("aws_subnet.a", graph.Metadata{
		"name": tfvalue.String("a"), "type": tfvalue.String("aws_subnet"),
	})
	g.EnsureNode("aws_subnet.b", graph.Metadata{
		"name": tfvalue.String("b"), "type": tfvalue.String("aws_subnet"),
	})
	g.EnsureNode("aws_autoscaling_group.app", graph.Metadata{
		"name": tfvalue.String("app"), "type": tfvalue.String("aws_autoscaling_group"),
		"vpc_zone_identifier": tfvalue.List([]tfvalue.Value{
			tfvalue.String("subnet-a-ref"), tfvalue.String("subnet-b-ref"),
		}),
	})

	op := provider.HandlerOp{Op: "expand_to_numbered_instances", Params: map[string]string{
		"pattern":   "aws_autoscaling_group",
		"attribute": "vpc_zone_identifier",
	}}
	if err := opExpandToNumberedInstances(g, op); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := g.MetaData["aws_autoscaling_group.app"]; ok {
		t.Fatal("un-numbered original ASG should have been replaced by per-subnet clones")
	}
	for i, subnet := range []string{"aws_subnet.a", "aws_subnet.b"} {
		clone := graph.CloneID("aws_autoscaling_group.app", i+1)
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
	}
}

// TestMultiInstancePatternsReachSpecialResources guards against the
// patterns table going dead again: every provider-declared pattern (besides
// aws_lb, which gets its own imperative handler) must surface as a
// SpecialResources entry that runResourceHandlers will actually execute.
func TestMultiInstancePatternsReachSpecialResources(t *testing.T) {
	tables := provider.Default.MustGet("aws")
	prefixes := map[string]bool{}
	for _, spec := range tables.SpecialResources {
		prefixes[spec.Prefix] = true
	}
	for typ := range tables.MultiInstancePatterns {
		if typ == "aws_lb" {
			continue
		}
		if !prefixes[typ] {
			t.Fatalf("MultiInstancePatterns declares %q but no SpecialResources entry consumes it", typ)
		}
	}
}
