package collection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns match every proposal under the cip/ directory.
var DefaultPatterns = []string{"cip/**/*.md", "cip/**/*.mdx"}

// FS is a document tree on disk. Identifiers are slash-separated paths
// relative to the root.
type FS struct {
	root     string
	patterns []string
	fsys     fs.FS
}

// NewFS creates a collection over root matching the given doublestar
// patterns. With no patterns DefaultPatterns are used.
func NewFS(root string, patterns ...string) (*FS, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return &FS{root: abs, patterns: patterns, fsys: os.DirFS(abs)}, nil
}

// Root returns the absolute root directory.
func (c *FS) Root() string {
	return c.root
}

// Patterns returns the match patterns.
func (c *FS) Patterns() []string {
	return c.patterns
}

// List returns the sorted, deduplicated identifiers of all regular files
// matching any pattern. A missing or unreadable root is an error.
func (c *FS) List(ctx context.Context) ([]string, error) {
	info, err := os.Stat(c.root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", c.root)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, pattern := range c.patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matches, err := doublestar.Glob(c.fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				ids = append(ids, m)
			}
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Matches reports whether a path relative to the root is part of the
// collection.
func (c *FS) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Read returns the content of a document.
func (c *FS) Read(_ context.Context, id string) ([]byte, error) {
	path, err := c.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	return data, nil
}

// Write replaces a document, keeping its file mode.
func (c *FS) Write(_ context.Context, id string, content []byte) error {
	path, err := c.path(id)
	if err != nil {
		return err
	}
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}
	return nil
}

// path maps an identifier to a file path, rejecting anything outside root.
func (c *FS) path(id string) (string, error) {
	if !fs.ValidPath(id) || strings.Contains(id, "\\") {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(c.root, filepath.FromSlash(id)), nil
}
