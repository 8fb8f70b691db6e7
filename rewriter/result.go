package rewriter

import (
	"time"

	"github.com/core-coin/cipctl/lifecycle"
)

// Outcome is what happened to one document in a run.
type Outcome string

// Document outcomes.
const (
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Reasons attached to skipped and failed documents.
const (
	ReasonMissingMetadata    = "missing-metadata"
	ReasonMalformedMetadata  = "malformed-metadata"
	ReasonInvalidDate        = "invalid-date"
	ReasonReadFailure        = "read-failure"
	ReasonPersistenceFailure = "persistence-failure"
)

// Result is the per-document record of a run.
type Result struct {
	ID        string
	Outcome   Outcome
	Reason    string
	Err       error
	Previous  lifecycle.Status
	Status    lifecycle.Status
	AgeDays   float64
	Regressed bool
}

// Report collects the results of one run.
type Report struct {
	RunID     string
	Reference time.Time
	DryRun    bool
	Results   []Result
	Duration  time.Duration
}

// Count returns the number of documents with the given outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Problems returns the skipped and failed results.
func (r *Report) Problems() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == OutcomeSkipped || res.Outcome == OutcomeFailed {
			out = append(out, res)
		}
	}
	return out
}
