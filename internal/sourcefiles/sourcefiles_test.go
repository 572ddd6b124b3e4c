package sourcefiles

import "testing"

func TestParseVariableBlockKeyedByName(t *testing.T) {
	src := []byte(`
variable "region" {
  default = "us-east-1"
}
`)
	sf, err := Parse("variables.tf", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vars, ok := sf.Blocks["variable"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected variable block to be keyed by name, got %T", sf.Blocks["variable"])
	}
	def, ok := vars["region"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected region definition map, got %T", vars["region"])
	}
	if def["default"] != "us-east-1" {
		t.Fatalf("got default %v, want us-east-1", def["default"])
	}
}

func TestParseLocalsAreAttributesNotLabeled(t *testing.T) {
	src := []byte(`
locals {
  name_prefix = "demo"
}
`)
	sf, err := Parse("main.tf", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	locals, ok := sf.Blocks["locals"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected locals block as a flat map, got %T", sf.Blocks["locals"])
	}
	if locals["name_prefix"] != "demo" {
		t.Fatalf("got %v, want demo", locals["name_prefix"])
	}
}

func TestParseResourceBlockKeepsUnresolvedExpressionAsText(t *testing.T) {
	src := []byte(`
resource "aws_subnet" "public" {
  vpc_id     = aws_vpc.main.id
  cidr_block = "10.0.1.0/24"
}
`)
	sf, err := Parse("main.tf", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resources, ok := sf.Blocks["resource"].([]map[string]interface{})
	if !ok || len(resources) != 1 {
		t.Fatalf("expected one resource record, got %#v", sf.Blocks["resource"])
	}
	record := resources[0]
	if record["cidr_block"] != "10.0.1.0/24" {
		t.Fatalf("got cidr_block %v, want literal folding to 10.0.1.0/24", record["cidr_block"])
	}
	if record["vpc_id"] != "aws_vpc.main.id" {
		t.Fatalf("got vpc_id %v, want unresolved reference text aws_vpc.main.id", record["vpc_id"])
	}
}

func TestParseSurfacesHCLSyntaxErrors(t *testing.T) {
	_, err := Parse("broken.tf", []byte(`resource "aws_vpc" "main" {`))
	if err == nil {
		t.Fatal("expected a parse error for unterminated block")
	}
}
