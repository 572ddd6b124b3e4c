// Package workspace provides a scratch directory for a single pipeline run,
// used by callers that stage Input C/E files (cloned repos, downloaded
// .tfvars) on disk before parsing them. Each context gets a UUID-named
// subdirectory, the same scoping the teacher applies to per-project
// version identifiers.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperrors "github.com/patrickchugh/terravision-core/internal/domain/errors"
)

// Context is a disposable directory rooted under the OS temp dir (or a
// caller-supplied base). Callers must Close it when the run completes.
type Context struct {
	ID   uuid.UUID
	Root string
}

// New creates a fresh workspace directory under base (os.TempDir() if
// base is empty).
func New(base string) (*Context, error) {
	if base == "" {
		base = os.TempDir()
	}
	id := uuid.New()
	root := filepath.Join(base, "terravision-core-"+id.String())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperrors.Wrap(err, "WORKSPACE_CREATE_FAILED", apperrors.KindInternal,
			"could not create workspace directory").WithMeta("root", root)
	}
	return &Context{ID: id, Root: root}, nil
}

// Path joins elem onto the workspace root.
func (c *Context) Path(elem ...string) string {
	return filepath.Join(append([]string{c.Root}, elem...)...)
}

// WriteFile stages a file relative to the workspace root, creating any
// intermediate directories.
func (c *Context) WriteFile(relPath string, data []byte) (string, error) {
	full := c.Path(relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", apperrors.Wrap(err, "WORKSPACE_WRITE_FAILED", apperrors.KindInternal,
			"could not create parent directory for staged file").WithMeta("path", full)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", apperrors.Wrap(err, "WORKSPACE_WRITE_FAILED", apperrors.KindInternal,
			"could not write staged file").WithMeta("path", full)
	}
	return full, nil
}

// Close removes the workspace directory and everything under it.
func (c *Context) Close() error {
	if c.Root == "" {
		return nil
	}
	if err := os.RemoveAll(c.Root); err != nil {
		return apperrors.Wrap(err, "WORKSPACE_CLEANUP_FAILED", apperrors.KindInternal,
			"could not remove workspace directory").WithMeta("root", c.Root)
	}
	return nil
}
