// Package rewriter runs the lifecycle classifier over a document collection
// and writes back the documents whose status changed.
package rewriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/core-coin/cipctl/collection"
	"github.com/core-coin/cipctl/document"
	"github.com/core-coin/cipctl/lifecycle"
	"github.com/core-coin/cipctl/metrics"
	"github.com/core-coin/cipctl/notify"
	"github.com/google/uuid"
)

// ErrEnumeration is returned when the collection cannot be listed. It is the
// only error that aborts a run.
var ErrEnumeration = errors.New("enumerate documents")

// Rewriter drives one classifier over a collection, one document at a time.
type Rewriter struct {
	collection collection.Collection
	classifier *lifecycle.Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
	notifier   notify.Notifier
	dryRun     bool
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		r.logger = logger
	}
}

// WithMetrics records run outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Rewriter) {
		r.metrics = m
	}
}

// WithNotifier publishes persisted status changes.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Rewriter) {
		r.notifier = n
	}
}

// WithDryRun classifies and reports without writing.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) {
		r.dryRun = dryRun
	}
}

// New creates a rewriter.
func New(coll collection.Collection, classifier *lifecycle.Classifier, opts ...Option) *Rewriter {
	r := &Rewriter{
		collection: coll,
		classifier: classifier,
		logger:     slog.Default(),
		notifier:   notify.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run classifies every document against ref. Per-document problems are
// recorded in the report; only a listing failure returns an error.
func (r *Rewriter) Run(ctx context.Context, ref time.Time) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.New().String(),
		Reference: ref,
		DryRun:    r.dryRun,
	}
	logger := r.logger.With("run_id", report.RunID)

	ids, err := r.collection.List(ctx)
	if err != nil {
		logger.Error("Failed to enumerate documents", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}
	logger.Debug("Enumerated documents",
		"count", len(ids),
		"strategy", r.classifier.Strategy().Name(),
		"dry_run", r.dryRun)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.Warn("Run interrupted", "processed", len(report.Results), "error", err)
			break
		}
		res := r.process(ctx, logger, report.RunID, id, ref)
		r.metrics.IncrementDocument(string(res.Outcome))
		report.Results = append(report.Results, res)
	}

	report.Duration = time.Since(start)
	r.metrics.ObserveRun(report.Duration, time.Now())

	logger.Info("Lifecycle run complete",
		"documents", len(report.Results),
		"updated", report.Count(OutcomeUpdated),
		"unchanged", report.Count(OutcomeUnchanged),
		"skipped", report.Count(OutcomeSkipped),
		"failed", report.Count(OutcomeFailed),
		"duration", report.Duration)

	return report, nil
}

// process handles a single document. It never returns an error: problems are
// logged and recorded in the result.
func (r *Rewriter) process(ctx context.Context, logger *slog.Logger, runID, id string, ref time.Time) Result {
	res := Result{ID: id}
	logger = logger.With("id", id)

	content, err := r.collection.Read(ctx, id)
	if err != nil {
		return r.fail(logger, res, OutcomeFailed, ReasonReadFailure, err)
	}

	doc, err := document.Parse(content)
	switch {
	case errors.Is(err, document.ErrNoFrontmatter):
		return r.fail(logger, res, OutcomeSkipped, ReasonMissingMetadata, err)
	case err != nil:
		return r.fail(logger, res, OutcomeSkipped, ReasonMalformedMetadata, err)
	}

	cls, err := r.classifier.Classify(doc.Metadata, ref)
	switch {
	case errors.Is(err, lifecycle.ErrMissingDate):
		return r.fail(logger, res, OutcomeSkipped, ReasonMissingMetadata, err)
	case err != nil:
		return r.fail(logger, res, OutcomeSkipped, ReasonInvalidDate, err)
	}

	res.Previous = cls.Previous
	res.Status = cls.Status
	res.AgeDays = cls.AgeDays
	res.Regressed = cls.Regressed

	if !cls.Changed {
		res.Outcome = OutcomeUnchanged
		return res
	}
	if cls.Regressed {
		logger.Warn("Computed status is earlier than stored status",
			"from", cls.Previous,
			"to", cls.Status,
			"age_days", cls.AgeDays)
	}

	if r.dryRun {
		res.Outcome = OutcomeUpdated
		logger.Info("Would update status", "from", cls.Previous, "to", cls.Status)
		return res
	}

	out, err := doc.WithMetadata(cls.Metadata).Bytes()
	if err == nil {
		err = r.collection.Write(ctx, id, out)
	}
	if err != nil {
		return r.fail(logger, res, OutcomeFailed, ReasonPersistenceFailure, err)
	}

	res.Outcome = OutcomeUpdated
	r.metrics.IncrementTransition(string(cls.Status))
	logger.Info("Updated status", "from", cls.Previous, "to", cls.Status)

	event := notify.Event{
		RunID:    runID,
		Document: id,
		From:     string(cls.Previous),
		To:       string(cls.Status),
		At:       ref,
	}
	if err := r.notifier.StatusChanged(ctx, event); err != nil {
		logger.Warn("Failed to publish status change", "error", err)
	}
	return res
}

func (r *Rewriter) fail(logger *slog.Logger, res Result, outcome Outcome, reason string, err error) Result {
	res.Outcome = outcome
	res.Reason = reason
	res.Err = err
	logger.Warn("Document "+string(outcome), "reason", reason, "error", err)
	return res
}
