package aws

import "testing"

func TestTablesPopulatesCoreSections(t *testing.T) {
	tables := Tables()
	if tables.Name != "aws" {
		t.Fatalf("got name %q, want aws", tables.Name)
	}
	if !tables.GroupNodes["aws_vpc"] {
		t.Fatal("aws_vpc must be a group node")
	}
	if !tables.SharedServices["aws_kms_key"] {
		t.Fatal("aws_kms_key must be a shared service")
	}
	if tables.ConsolidatedNodes["aws_route53"] == "" {
		t.Fatal("aws_route53 must have a consolidation target")
	}
}

func TestReverseArrowListOrdersRegionOutermost(t *testing.T) {
	tables := Tables()
	regionRank := tables.ReverseArrowRank("tv_aws_region")
	vpcRank := tables.ReverseArrowRank("aws_vpc")
	if regionRank < 0 || vpcRank < 0 {
		t.Fatal("both tv_aws_region and aws_vpc must be ranked")
	}
	if regionRank >= vpcRank {
		t.Fatal("tv_aws_region must rank ahead of (more outer than) aws_vpc")
	}
}

func TestSpecialResourcesRegistersKnownImperativeHandlers(t *testing.T) {
	tables := Tables()
	seen := map[string]bool{}
	for _, spec := range tables.SpecialResources {
		if spec.ImperativeHandler != "" {
			seen[spec.ImperativeHandler] = true
		}
	}
	for _, want := range []string{
		"aws_subnet_az_insertion",
		"aws_security_group_wrap",
		"aws_lb_variant_rewire",
	} {
		if !seen[want] {
			t.Fatalf("expected SPECIAL_RESOURCES to reference handler %q", want)
		}
	}
}
