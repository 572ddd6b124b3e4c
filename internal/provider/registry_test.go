package provider

import "testing"

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Tables{Name: "aws"}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := r.Register(&Tables{Name: "aws"}); err == nil {
		t.Fatal("expected an error on duplicate registration")
	}
}

func TestRegistryGetAndMustGet(t *testing.T) {
	r := NewRegistry()
	want := &Tables{Name: "gcp"}
	if err := r.Register(want); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, ok := r.Get("gcp")
	if !ok || got != want {
		t.Fatalf("Get returned (%v, %v), want (%v, true)", got, ok, want)
	}
	if r.MustGet("gcp") != want {
		t.Fatal("MustGet returned the wrong table")
	}
}

func TestMustGetPanicsOnUnknownProvider(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustGet to panic for an unregistered provider")
		}
	}()
	NewRegistry().MustGet("does-not-exist")
}

func TestReverseArrowRankOrdersByListPosition(t *testing.T) {
	tables := &Tables{
		ReverseArrowList: []ReverseArrowEntry{
			{TypePrefix: "aws_vpc"},
			{TypePrefix: "aws_subnet"},
		},
	}
	if tables.ReverseArrowRank("aws_vpc") != 0 {
		t.Fatal("aws_vpc must rank 0 (outermost)")
	}
	if tables.ReverseArrowRank("aws_subnet") != 1 {
		t.Fatal("aws_subnet must rank 1")
	}
	if tables.ReverseArrowRank("aws_instance") != -1 {
		t.Fatal("an unlisted type must rank -1")
	}
}
