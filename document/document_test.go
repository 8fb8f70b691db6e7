package document

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `---
cip: 12
title: Fee market
author: Jane Doe <jane@example.com>
date: 2024-01-01
tags:
  - draft
  - core
---

# Fee market

Body text with trailing spaces
---
not a header
`

func TestParse_WithFrontmatter(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	date, ok := doc.Metadata.String("date")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", date)

	author, ok := doc.Metadata.String("author")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe <jane@example.com>", author)

	assert.Equal(t, []string{"draft", "core"}, doc.Metadata.Strings("tags"))
	assert.Equal(t, []string{"cip", "title", "author", "date", "tags"}, doc.Metadata.Keys())

	// The body starts right after the closing delimiter line, blank line included.
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("\n# Fee market")))
	assert.Contains(t, string(doc.Body), "---\nnot a header\n")
}

func TestParse_NoFrontmatter(t *testing.T) {
	_, err := Parse([]byte("# Just a body\n"))
	assert.True(t, errors.Is(err, ErrNoFrontmatter))
}

func TestParse_Unterminated(t *testing.T) {
	_, err := Parse([]byte("---\ndate: 2024-01-01\n# no end\n"))
	assert.True(t, errors.Is(err, ErrNoFrontmatter))
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("---\ndate: [unclosed\n---\nbody\n"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoFrontmatter))
	assert.Contains(t, err.Error(), "parse YAML frontmatter")
}

func TestParse_HeaderNotMapping(t *testing.T) {
	_, err := Parse([]byte("---\n- a\n- b\n---\nbody\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")
}

func TestParse_EmptyHeader(t *testing.T) {
	doc, err := Parse([]byte("---\n---\nbody\n"))
	require.NoError(t, err)
	assert.False(t, doc.Metadata.Has("date"))
	assert.Equal(t, []byte("body\n"), doc.Body)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	content := "---\r\ndate: 2024-01-01\r\nstatus: draft\r\n---\r\nBody\r\n"

	doc, err := Parse([]byte(content))
	require.NoError(t, err)

	status, ok := doc.Metadata.String("status")
	assert.True(t, ok)
	assert.Equal(t, "draft", status)
	assert.Equal(t, []byte("Body\r\n"), doc.Body)

	doc.Metadata.SetString("status", "final")
	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("---\r\n")))
	assert.True(t, bytes.HasSuffix(out, []byte("---\r\nBody\r\n")))
	assert.NotContains(t, string(bytes.ReplaceAll(out, []byte("\r\n"), nil)), "\n")
}

func TestDocument_Bytes_PreservesBody(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	originalBody := append([]byte(nil), doc.Body...)

	doc.Metadata.SetStrings("tags", []string{"core", "final"})
	out, err := doc.Bytes()
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, originalBody, reparsed.Body)
	assert.Equal(t, []string{"core", "final"}, reparsed.Metadata.Strings("tags"))
	assert.Equal(t, []string{"cip", "title", "author", "date", "tags"}, reparsed.Metadata.Keys())
}

func TestDocument_Bytes_KeepsFlowStyle(t *testing.T) {
	doc, err := Parse([]byte("---\ndate: 2024-01-01\ntags: [draft, core]\n---\nbody\n"))
	require.NoError(t, err)

	doc.Metadata.SetStrings("tags", []string{"core", "final"})
	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "tags: [core, final]")
}

func TestMetadata_StringsScalar(t *testing.T) {
	doc, err := Parse([]byte("---\ntags: core\nempty:\n---\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"core"}, doc.Metadata.Strings("tags"))
	assert.Nil(t, doc.Metadata.Strings("empty"))
	assert.Nil(t, doc.Metadata.Strings("missing"))

	_, ok := doc.Metadata.String("empty")
	assert.False(t, ok)
}

func TestMetadata_SetAppendsMissingKey(t *testing.T) {
	meta := NewMetadata()
	meta.SetString("date", "2024-01-01")
	meta.SetString("status", "last call")

	assert.Equal(t, []string{"date", "status"}, meta.Keys())
	status, _ := meta.String("status")
	assert.Equal(t, "last call", status)
}

func TestMetadata_CloneIsIndependent(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	clone := doc.Metadata.Clone()
	clone.SetStrings("tags", []string{"final"})

	assert.Equal(t, []string{"draft", "core"}, doc.Metadata.Strings("tags"))
	assert.Equal(t, []string{"final"}, clone.Strings("tags"))
}

func TestDocument_WithMetadata(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	meta := doc.Metadata.Clone()
	meta.SetString("status", "final")
	updated := doc.WithMetadata(meta)

	assert.Equal(t, doc.Body, updated.Body)
	assert.False(t, doc.Metadata.Has("status"))
	assert.True(t, updated.Metadata.Has("status"))
}
