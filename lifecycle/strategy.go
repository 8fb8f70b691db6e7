package lifecycle

import (
	"fmt"
	"slices"

	"github.com/core-coin/cipctl/document"
)

// Header keys read and written by the strategies.
const (
	DateKey   = "date"
	TagsKey   = "tags"
	StatusKey = "status"
)

// Strategy stores the computed status in a header. A classifier uses exactly
// one strategy so the two representations never disagree.
type Strategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// Current returns the stored status, if any.
	Current(meta *document.Metadata) (Status, bool)

	// Apply writes status into meta and reports whether meta changed.
	Apply(meta *document.Metadata, status Status) bool
}

// Strategy names accepted by StrategyByName.
const (
	StrategyTags   = "tags"
	StrategyStatus = "status"
)

// StrategyByName returns the strategy registered under name.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case StrategyTags, "":
		return TagsStrategy{}, nil
	case StrategyStatus:
		return StatusFieldStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown lifecycle strategy %q (want %q or %q)", name, StrategyTags, StrategyStatus)
	}
}

// TagsStrategy keeps one lifecycle token in the tags list. Other tags keep
// their order; the lifecycle token goes last.
type TagsStrategy struct{}

// Name implements Strategy.
func (TagsStrategy) Name() string { return StrategyTags }

// Current implements Strategy. With several lifecycle tokens present the
// last one wins.
func (TagsStrategy) Current(meta *document.Metadata) (Status, bool) {
	var (
		current Status
		found   bool
	)
	for _, tag := range meta.Strings(TagsKey) {
		if IsStatus(tag) {
			current, found = Status(tag), true
		}
	}
	return current, found
}

// Apply implements Strategy. Tags are only rewritten when the computed token
// is missing.
func (TagsStrategy) Apply(meta *document.Metadata, status Status) bool {
	tags := meta.Strings(TagsKey)
	if slices.Contains(tags, string(status)) {
		return false
	}

	kept := make([]string, 0, len(tags)+1)
	for _, tag := range tags {
		if !IsStatus(tag) {
			kept = append(kept, tag)
		}
	}
	meta.SetStrings(TagsKey, append(kept, string(status)))
	return true
}

// StatusFieldStrategy keeps the status in a single scalar field.
type StatusFieldStrategy struct{}

// Name implements Strategy.
func (StatusFieldStrategy) Name() string { return StrategyStatus }

// Current implements Strategy.
func (StatusFieldStrategy) Current(meta *document.Metadata) (Status, bool) {
	s, ok := meta.String(StatusKey)
	if !ok || !IsStatus(s) {
		return "", false
	}
	return Status(s), true
}

// Apply implements Strategy.
func (StatusFieldStrategy) Apply(meta *document.Metadata, status Status) bool {
	if s, ok := meta.String(StatusKey); ok && s == string(status) {
		return false
	}
	meta.SetString(StatusKey, string(status))
	return true
}
