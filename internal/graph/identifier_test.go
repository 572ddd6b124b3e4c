package graph

import "testing"

func TestNormalizeIDFoldsBracketIndex(t *testing.T) {
	got := NormalizeID("aws_subnet.public[0]")
	if got != "aws_subnet.public~1" {
		t.Fatalf("got %q, want aws_subnet.public~1", got)
	}
}

func TestNormalizeIDLeavesPlainIDsAlone(t *testing.T) {
	got := NormalizeID("aws_vpc.main")
	if got != "aws_vpc.main" {
		t.Fatalf("got %q, want aws_vpc.main", got)
	}
}

func TestStripModule(t *testing.T) {
	got := StripModule("module.network.aws_vpc.main")
	if got != "aws_vpc.main" {
		t.Fatalf("got %q, want aws_vpc.main", got)
	}
}

func TestTypeOfAndNameOf(t *testing.T) {
	id := "module.network.aws_subnet.public~2"
	if got := TypeOf(id); got != "aws_subnet" {
		t.Fatalf("TypeOf got %q, want aws_subnet", got)
	}
	if got := NameOf(id); got != "public~2" {
		t.Fatalf("NameOf got %q, want public~2", got)
	}
}

func TestBaseIDAndCloneIndexRoundtrip(t *testing.T) {
	clone := CloneID("aws_subnet.public", 3)
	if clone != "aws_subnet.public~3" {
		t.Fatalf("CloneID got %q", clone)
	}
	if BaseID(clone) != "aws_subnet.public" {
		t.Fatalf("BaseID got %q", BaseID(clone))
	}
	if CloneIndex(clone) != 3 {
		t.Fatalf("CloneIndex got %d, want 3", CloneIndex(clone))
	}
	if CloneIndex("aws_subnet.public") != 0 {
		t.Fatal("CloneIndex of an un-cloned id must be 0")
	}
}
