package collection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFS_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "cip/cip-2.md", "b")
	writeFile(t, root, "cip/cip-1.md", "a")
	writeFile(t, root, "cip/core/cip-10.mdx", "c")
	writeFile(t, root, "cip/README.txt", "ignored")
	writeFile(t, root, "docs/guide.md", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cip", "dir.md"), 0755))

	c, err := NewFS(root)
	require.NoError(t, err)

	ids, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cip/cip-1.md", "cip/cip-2.md", "cip/core/cip-10.mdx"}, ids)
}

func TestFS_List_Deduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "cip/cip-1.md", "a")

	c, err := NewFS(root, "cip/*.md", "cip/**/*.md")
	require.NoError(t, err)

	ids, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cip/cip-1.md"}, ids)
}

func TestFS_List_MissingRoot(t *testing.T) {
	c, err := NewFS(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)

	_, err = c.List(context.Background())
	assert.Error(t, err)
}

func TestFS_List_EmptyTree(t *testing.T) {
	c, err := NewFS(t.TempDir())
	require.NoError(t, err)

	ids, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNewFS_InvalidPattern(t *testing.T) {
	_, err := NewFS(t.TempDir(), "cip/[.md")
	assert.Error(t, err)
}

func TestFS_ReadWrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "cip/cip-1.md", "original")
	require.NoError(t, os.Chmod(filepath.Join(root, "cip", "cip-1.md"), 0600))

	c, err := NewFS(root)
	require.NoError(t, err)
	ctx := context.Background()

	data, err := c.Read(ctx, "cip/cip-1.md")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	require.NoError(t, c.Write(ctx, "cip/cip-1.md", []byte("updated")))

	data, err = c.Read(ctx, "cip/cip-1.md")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))

	info, err := os.Stat(filepath.Join(root, "cip", "cip-1.md"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFS_Read_NotFound(t *testing.T) {
	c, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = c.Read(context.Background(), "cip/missing.md")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFS_RejectsEscapingIDs(t *testing.T) {
	c, err := NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = c.Read(context.Background(), "../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, c.Write(context.Background(), "/abs.md", []byte("x")))
}

func TestFS_Matches(t *testing.T) {
	c, err := NewFS(t.TempDir())
	require.NoError(t, err)

	assert.True(t, c.Matches("cip/cip-1.md"))
	assert.True(t, c.Matches(filepath.Join("cip", "core", "cip-2.mdx")))
	assert.False(t, c.Matches("docs/cip-1.md"))
	assert.False(t, c.Matches("cip/notes.txt"))
}

func TestMemory(t *testing.T) {
	m := NewMemory(map[string]string{"b": "2", "a": "1"})
	ctx := context.Background()

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, m.Write(ctx, "a", []byte("one")))
	assert.Equal(t, "one", m.Content("a"))
	assert.Equal(t, 1, m.Writes("a"))
	assert.Equal(t, 0, m.Writes("b"))

	boom := errors.New("boom")
	m.WriteErrs["b"] = boom
	assert.ErrorIs(t, m.Write(ctx, "b", []byte("x")), boom)

	m.ListErr = boom
	_, err = m.List(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = m.Read(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
