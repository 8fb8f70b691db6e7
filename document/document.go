// Package document reads and writes proposal documents: a YAML frontmatter
// header followed by an opaque markdown body.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrNoFrontmatter is returned when a document has no metadata header or the
// header is not terminated.
var ErrNoFrontmatter = errors.New("no frontmatter header")

// Document is a parsed proposal document.
type Document struct {
	// Metadata is the frontmatter header.
	Metadata *Metadata

	// Body is every byte after the closing delimiter line. It is written back
	// unchanged.
	Body []byte

	// newline is the line ending used by the delimiters.
	newline string
}

// Parse splits content into frontmatter and body.
func Parse(content []byte) (*Document, error) {
	newline := "\n"
	switch {
	case bytes.HasPrefix(content, []byte(delimiter+"\r\n")):
		newline = "\r\n"
	case bytes.HasPrefix(content, []byte(delimiter+"\n")):
	default:
		return nil, ErrNoFrontmatter
	}

	header, body, ok := splitHeader(content[len(delimiter)+len(newline):])
	if !ok {
		return nil, ErrNoFrontmatter
	}

	meta, err := parseMetadata(header)
	if err != nil {
		return nil, err
	}

	return &Document{Metadata: meta, Body: body, newline: newline}, nil
}

// splitHeader finds the closing delimiter line in rest. It returns the header
// bytes before that line and everything after it.
func splitHeader(rest []byte) (header, body []byte, ok bool) {
	offset := 0
	for offset <= len(rest) {
		end := bytes.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		next := len(rest)
		if end >= 0 {
			line = rest[offset : offset+end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, "\r")) == delimiter {
			return rest[:offset], rest[next:], true
		}
		if end < 0 {
			break
		}
		offset = next
	}
	return nil, nil, false
}

func parseMetadata(header []byte) (*Metadata, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(header, &root); err != nil {
		return nil, fmt.Errorf("parse YAML frontmatter: %w", err)
	}

	// An empty header decodes to a zero node.
	if root.Kind == 0 {
		return NewMetadata(), nil
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse YAML frontmatter: header is not a mapping")
	}
	return &Metadata{node: root.Content[0]}, nil
}

// Bytes renders the document. The header is re-encoded; the body is appended
// as-is.
func (d *Document) Bytes() ([]byte, error) {
	newline := d.newline
	if newline == "" {
		newline = "\n"
	}

	var header bytes.Buffer
	enc := yaml.NewEncoder(&header)
	enc.SetIndent(2)
	if err := enc.Encode(d.Metadata.node); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	encoded := header.Bytes()
	if len(d.Metadata.node.Content) == 0 {
		encoded = nil
	}
	if newline != "\n" {
		encoded = bytes.ReplaceAll(encoded, []byte("\n"), []byte(newline))
	}

	var out bytes.Buffer
	out.Grow(len(encoded) + len(d.Body) + 8)
	out.WriteString(delimiter + newline)
	out.Write(encoded)
	out.WriteString(delimiter + newline)
	out.Write(d.Body)
	return out.Bytes(), nil
}

// WithMetadata returns a copy of d carrying meta. The body is shared.
func (d *Document) WithMetadata(meta *Metadata) *Document {
	return &Document{Metadata: meta, Body: d.Body, newline: d.newline}
}
