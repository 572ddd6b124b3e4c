package pipeline

import "testing"

// fixturePlan builds a minimal Input A/B pair: a VPC containing a subnet
// containing an instance, with one security group the instance references.
func fixturePlan() *Input {
	in := &Input{
		Planner: PlannerJSON{
			ResourceChanges: []ResourceChange{
				{Address: "aws_vpc.main", Mode: "managed", Type: "aws_vpc"},
				{Address: "aws_subnet.public", Mode: "managed", Type: "aws_subnet"},
				{Address: "aws_security_group.web", Mode: "managed", Type: "aws_security_group"},
				{Address: "aws_instance.app", Mode: "managed", Type: "aws_instance"},
			},
		},
	}
	in.Planner.ResourceChanges[1].Change.After = map[string]interface{}{
		"vpc_id":            "aws_vpc.main",
		"cidr_block":        "10.0.1.0/24",
		"availability_zone": "us-east-1a",
	}
	in.Planner.ResourceChanges[3].Change.After = map[string]interface{}{
		"subnet_id":               "aws_subnet.public",
		"vpc_security_group_ids": []interface{}{"sg-web-ref"},
	}

	in.LowLevel = LowLevelGraph{
		Objects: []GraphObject{
			{GVID: 0, Label: "aws_vpc.main"},
			{GVID: 1, Label: "aws_subnet.public"},
			{GVID: 2, Label: "aws_instance.app"},
		},
		Edges: []GraphEdge{
			{Head: 0, Tail: 1},
			{Head: 1, Tail: 2},
		},
	}
	return in
}

func TestRunProducesConsistentGraph(t *testing.T) {
	result, err := Run(fixturePlan())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ProviderDetection.PrimaryProvider != "aws" {
		t.Fatalf("got provider %q, want aws", result.ProviderDetection.PrimaryProvider)
	}

	foundAZ := false
	for _, id := range result.Nodes() {
		if contains(id, "aws_az.") {
			foundAZ = true
		}
	}
	if !foundAZ {
		t.Fatal("expected an availability-zone node synthesized by the AWS subnet handler")
	}

	foundSGWrap := false
	for _, children := range result.GraphDict {
		for _, c := range children {
			if c == "aws_instance.app" {
				foundSGWrap = true
			}
		}
	}
	if !foundSGWrap {
		t.Fatal("expected aws_instance.app to remain reachable from some parent after cleanup")
	}

	for parent, children := range result.GraphDict {
		seen := map[string]bool{}
		for _, c := range children {
			if seen[c] {
				t.Fatalf("duplicate edge %s -> %s after Finalize", parent, c)
			}
			seen[c] = true
		}
	}
}

func TestRunIsRepeatableOnNodeCount(t *testing.T) {
	first, err := Run(fixturePlan())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := Run(fixturePlan())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(first.GraphDict) != len(second.GraphDict) {
		t.Fatalf("got %d and %d nodes across two runs of the same input, want equal",
			len(first.GraphDict), len(second.GraphDict))
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}
