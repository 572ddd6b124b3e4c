package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewCreatesDirectoryAndCloseRemovesIt(t *testing.T) {
	base := t.TempDir()
	ctx, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(ctx.Root); err != nil {
		t.Fatalf("expected workspace root to exist: %v", err)
	}
	if filepath.Dir(ctx.Root) != base {
		t.Fatalf("got root %q, want a child of %q", ctx.Root, base)
	}

	if err := ctx.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(ctx.Root); !os.IsNotExist(err) {
		t.Fatal("expected workspace root to be removed after Close")
	}
}

func TestWriteFileStagesNestedPath(t *testing.T) {
	ctx, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ctx.Close()

	full, err := ctx.WriteFile("modules/network/main.tf", []byte("resource {}"))
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(data) != "resource {}" {
		t.Fatalf("got %q, want %q", string(data), "resource {}")
	}
}

func TestTwoContextsGetDistinctRoots(t *testing.T) {
	base := t.TempDir()
	a, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Root == b.Root {
		t.Fatal("expected distinct UUID-named roots")
	}
}
