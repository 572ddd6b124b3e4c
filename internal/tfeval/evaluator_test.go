package tfeval

import (
	"testing"

	"github.com/patrickchugh/terravision-core/internal/tfvalue"
)

func TestEvaluateVariableSubstitution(t *testing.T) {
	syms := NewSymbolTables()
	syms.Variables["main"] = map[string]tfvalue.Value{
		"enabled": tfvalue.Bool(true),
	}
	ev := New(syms)

	v, err := ev.Evaluate(`var.enabled`, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "true" {
		t.Fatalf("got %q, want true", v.AsString())
	}
}

func TestEvaluateMissingVariableIsFatal(t *testing.T) {
	ev := New(NewSymbolTables())
	_, err := ev.Evaluate(`var.missing`, "main")
	if err == nil {
		t.Fatal("expected MissingSymbolError")
	}
	if _, ok := err.(*MissingSymbolError); !ok {
		t.Fatalf("got %T, want *MissingSymbolError", err)
	}
}

func TestEvaluateTernary(t *testing.T) {
	syms := NewSymbolTables()
	syms.Variables["main"] = map[string]tfvalue.Value{
		"is_prod": tfvalue.Bool(true),
	}
	ev := New(syms)

	v, err := ev.Evaluate(`var.is_prod ? "3" : "1"`, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "3" {
		t.Fatalf("got %q, want 3", v.AsString())
	}
}

func TestResolveCountZeroHidesNode(t *testing.T) {
	syms := NewSymbolTables()
	syms.Variables["main"] = map[string]tfvalue.Value{
		"replica_count": tfvalue.Int(0),
	}
	ev := New(syms)

	n, ok := ev.ResolveCount("var.replica_count", "main")
	if !ok {
		t.Fatal("expected successful resolution")
	}
	if n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}

func TestResolveCountDefaultsToOneWhenAbsent(t *testing.T) {
	ev := New(NewSymbolTables())
	n, ok := ev.ResolveCount("", "main")
	if !ok || n != 1 {
		t.Fatalf("got (%d,%v), want (1,true)", n, ok)
	}
}

func TestFunctionLengthOnList(t *testing.T) {
	ev := New(NewSymbolTables())
	v, err := ev.Evaluate(`length(["a","b","c"])`, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := v.Int()
	if !ok || n != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestEvaluateEqualityUsesStringHashing(t *testing.T) {
	syms := NewSymbolTables()
	syms.Variables["main"] = map[string]tfvalue.Value{
		"env": tfvalue.String("prod"),
	}
	ev := New(syms)
	v, err := ev.Evaluate(`var.env == "prod" ? "2" : "1"`, "main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.AsString() != "2" {
		t.Fatalf("got %q, want 2", v.AsString())
	}
}
