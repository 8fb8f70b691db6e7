package document

import (
	"gopkg.in/yaml.v3"
)

// Metadata is a frontmatter header. It keeps the parsed YAML node so key
// order, comments and sequence style survive a rewrite.
type Metadata struct {
	node *yaml.Node
}

// NewMetadata returns an empty header.
func NewMetadata() *Metadata {
	return &Metadata{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	return m.value(key) != nil
}

// String returns the scalar value of key.
func (m *Metadata) String(key string) (string, bool) {
	v := m.value(key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return "", false
	}
	return v.Value, true
}

// Strings returns key as a list. A scalar value is a one-element list.
func (m *Metadata) Strings(key string) []string {
	v := m.value(key)
	if v == nil {
		return nil
	}
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" || v.Value == "" {
			return nil
		}
		return []string{v.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, item.Value)
			}
		}
		return out
	}
	return nil
}

// SetString sets key to a string scalar, appending the key when absent.
func (m *Metadata) SetString(key, value string) {
	m.set(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// SetStrings sets key to a sequence of strings. An existing flow-style
// sequence stays flow-style.
func (m *Metadata) SetStrings(key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if old := m.value(key); old != nil && old.Kind == yaml.SequenceNode {
		seq.Style = old.Style
	}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	m.set(key, seq)
}

// Clone returns a deep copy.
func (m *Metadata) Clone() *Metadata {
	return &Metadata{node: cloneNode(m.node)}
}

// Keys returns the header keys in document order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.node.Content)/2)
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		keys = append(keys, m.node.Content[i].Value)
	}
	return keys
}

func (m *Metadata) value(key string) *yaml.Node {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			return m.node.Content[i+1]
		}
	}
	return nil
}

func (m *Metadata) set(key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			value.LineComment = m.node.Content[i+1].LineComment
			m.node.Content[i+1] = value
			return
		}
	}
	m.node.Content = append(m.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	return &c
}
