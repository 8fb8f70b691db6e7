package lifecycle

import (
	"time"

	"github.com/core-coin/cipctl/document"
)

// Result is the outcome of classifying one header.
type Result struct {
	// Changed reports whether Metadata differs from the input.
	Changed bool

	// Metadata is a copy of the input with the computed status applied.
	Metadata *document.Metadata

	// Status is the computed stage.
	Status Status

	// Previous is the stage stored before classification, empty if none.
	Previous Status

	// AgeDays is the document age at the reference time.
	AgeDays float64

	// Regressed is set when Status comes earlier in the lifecycle than
	// Previous, which happens when a date is edited forwards.
	Regressed bool
}

// Classifier computes lifecycle status from a header's date.
type Classifier struct {
	strategy Strategy
}

// NewClassifier creates a classifier. A nil strategy means TagsStrategy.
func NewClassifier(strategy Strategy) *Classifier {
	if strategy == nil {
		strategy = TagsStrategy{}
	}
	return &Classifier{strategy: strategy}
}

// Strategy returns the strategy in use.
func (c *Classifier) Strategy() Strategy {
	return c.strategy
}

// Classify derives the status of meta at ref. meta itself is never modified.
func (c *Classifier) Classify(meta *document.Metadata, ref time.Time) (Result, error) {
	raw, ok := meta.String(DateKey)
	if !ok {
		return Result{}, ErrMissingDate
	}
	created, err := ParseDate(raw)
	if err != nil {
		return Result{}, err
	}

	age := AgeInDays(created, ref)
	status := StatusForAge(age)
	previous, _ := c.strategy.Current(meta)

	updated := meta.Clone()
	changed := c.strategy.Apply(updated, status)

	return Result{
		Changed:   changed,
		Metadata:  updated,
		Status:    status,
		Previous:  previous,
		AgeDays:   age,
		Regressed: previous != "" && rank(status) < rank(previous),
	}, nil
}
