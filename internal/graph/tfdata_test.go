package graph

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func baseMetadata(typ string) Metadata {
	return Metadata{
		"name":     tfvalue.String("x"),
		"type":     tfvalue.String(typ),
		"provider": tfvalue.String("aws"),
	}
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.main", baseMetadata("aws_vpc"))
	g.EnsureNode("aws_subnet.public", baseMetadata("aws_subnet"))

	g.AddEdge("aws_vpc.main", "aws_subnet.public")
	g.AddEdge("aws_vpc.main", "aws_subnet.public")

	if got := len(g.GraphDict["aws_vpc.main"]); got != 1 {
		t.Fatalf("got %d edges, want 1 (idempotent)", got)
	}
}

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.main", baseMetadata("aws_vpc"))
	g.AddEdge("aws_vpc.main", "aws_vpc.main")
	if len(g.GraphDict["aws_vpc.main"]) != 0 {
		t.Fatal("self-loop must not be added")
	}
}

func TestHideRemovesFromGraphdictButKeepsMetadata(t *testing.T) {
	g := New()
	g.EnsureNode("aws_subnet.public", baseMetadata("aws_subnet"))
	g.EnsureNode("aws_instance.web", baseMetadata("aws_instance"))
	g.AddEdge("aws_subnet.public", "aws_instance.web")

	g.Hide("aws_instance.web")

	if _, ok := g.GraphDict["aws_instance.web"]; ok {
		t.Fatal("hidden node must not be a graphdict key")
	}
	if _, ok := g.MetaData["aws_instance.web"]; !ok {
		t.Fatal("hidden node metadata must be retained")
	}
	if !g.Hidden["aws_instance.web"] {
		t.Fatal("node must be marked hidden")
	}
	for _, c := range g.GraphDict["aws_subnet.public"] {
		if c == "aws_instance.web" {
			t.Fatal("hidden node must not remain referenced from its former parent")
		}
	}
}

func TestDeleteNodeStripsDanglingReferences(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.main", baseMetadata("aws_vpc"))
	g.EnsureNode("aws_subnet.public", baseMetadata("aws_subnet"))
	g.AddEdge("aws_vpc.main", "aws_subnet.public")

	g.DeleteNode("aws_subnet.public")

	if _, ok := g.MetaData["aws_subnet.public"]; ok {
		t.Fatal("deleted node metadata must be gone")
	}
	for _, c := range g.GraphDict["aws_vpc.main"] {
		if c == "aws_subnet.public" {
			t.Fatal("deleted node must not remain in any adjacency list")
		}
	}
}

func TestFinalizeSortsHiddenList(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.main", baseMetadata("aws_vpc"))
	g.EnsureNode("aws_subnet.b", baseMetadata("aws_subnet"))
	g.EnsureNode("aws_subnet.a", baseMetadata("aws_subnet"))
	g.AddEdge("aws_vpc.main", "aws_subnet.b")
	g.AddEdge("aws_vpc.main", "aws_subnet.a")
	g.Hide("aws_subnet.b")
	g.Hide("aws_subnet.a")

	if got := g.GraphDict["aws_vpc.main"]; len(got) != 0 {
		t.Fatalf("hidden children must not remain in the adjacency list, got %v", got)
	}

	g.Finalize()

	if len(g.HiddenList) != 2 || g.HiddenList[0] != "aws_subnet.a" || g.HiddenList[1] != "aws_subnet.b" {
		t.Fatalf("got %v, want sorted [aws_subnet.a aws_subnet.b]", g.HiddenList)
	}
}

func TestValidateFlagsMissingRequiredKeys(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.main", Metadata{"name": tfvalue.String("main")})

	issues := g.Validate(map[string]bool{})
	found := false
	for _, iss := range issues {
		if iss.Kind == "missing_required_key" && iss.Node == "aws_vpc.main" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a missing_required_key issue for type/provider")
	}
}

func TestValidateFlagsSharedAcrossGroups(t *testing.T) {
	g := New()
	g.EnsureNode("aws_vpc.a", baseMetadata("aws_vpc"))
	g.EnsureNode("aws_vpc.b", baseMetadata("aws_vpc"))
	g.EnsureNode("aws_subnet.shared", baseMetadata("aws_subnet"))
	g.AddEdge("aws_vpc.a", "aws_subnet.shared")
	g.AddEdge("aws_vpc.b", "aws_subnet.shared")

	issues := g.Validate(map[string]bool{"aws_vpc": true})
	found := false
	for _, iss := range issues {
		if iss.Kind == "shared_across_groups" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a shared_across_groups issue")
	}
}

func TestBreakCyclesMakesGraphAcyclic(t *testing.T) {
	g := New()
	for _, id := range []string{"a.1", "a.2", "a.3"} {
		g.EnsureNode(id, baseMetadata("a"))
	}
	g.AddEdge("a.1", "a.2")
	g.AddEdge("a.2", "a.3")
	g.AddEdge("a.3", "a.1")

	removed := g.BreakCycles()
	if len(removed) != 1 {
		t.Fatalf("got %d removed edges, want 1", len(removed))
	}
	if _, _, found := g.findShortestBackEdge(); found {
		t.Fatal("graph must be acyclic after BreakCycles")
	}
}
