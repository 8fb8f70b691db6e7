package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/core-coin/cipctl/collection"
	"github.com/core-coin/cipctl/config"
	"github.com/core-coin/cipctl/lifecycle"
	"github.com/core-coin/cipctl/metrics"
	"github.com/core-coin/cipctl/notify"
	"github.com/core-coin/cipctl/rewriter"
	"github.com/core-coin/cipctl/watch"
)

// App wires the collection, classifier, and outputs for one invocation.
type App struct {
	config     *config.Config
	logger     *slog.Logger
	collection *collection.FS
	store      *watchedStore
	rewriter   *rewriter.Rewriter
	metrics    *metrics.Metrics
	notifier   notify.Notifier

	// now is the reference clock
	now func() time.Time
}

// NewApp creates the application from a validated config.
func NewApp(cfg *config.Config, logger *slog.Logger, dryRun bool) (*App, error) {
	coll, err := collection.NewFS(cfg.Collection.Root, cfg.Collection.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	strategy, err := lifecycle.StrategyByName(cfg.Lifecycle.Strategy)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:     cfg,
		logger:     logger,
		collection: coll,
		store:      &watchedStore{FS: coll},
		metrics:    metrics.New(),
		notifier:   notify.Nop{},
		now:        func() time.Time { return time.Now().UTC() },
	}

	if cfg.Notify.NATSURL != "" && !dryRun {
		n, err := notify.ConnectNATS(cfg.Notify.NATSURL, cfg.Notify.Subject, logger)
		if err != nil {
			logger.Warn("Notifications disabled", "error", err)
		} else {
			app.notifier = n
		}
	}

	app.rewriter = rewriter.New(app.store, lifecycle.NewClassifier(strategy),
		rewriter.WithLogger(logger),
		rewriter.WithMetrics(app.metrics),
		rewriter.WithNotifier(app.notifier),
		rewriter.WithDryRun(dryRun),
	)
	return app, nil
}

// Run performs one batch run against the current time.
func (a *App) Run(ctx context.Context) (*rewriter.Report, error) {
	report, err := a.rewriter.Run(ctx, a.now())
	if err != nil {
		return nil, err
	}
	if err := a.metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
		a.logger.Warn("Failed to write metrics textfile",
			"path", a.config.Metrics.Textfile,
			"error", err)
	}
	return report, nil
}

// Watch runs once, then again after every debounced batch of document
// changes until ctx is canceled. Enumeration failures end the initial run
// but are only logged afterwards.
func (a *App) Watch(ctx context.Context, onReport func(*rewriter.Report)) error {
	w, err := watch.New(a.collection.Root(), a.collection.Matches, a.config.Watch.Debounce, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()
	a.store.watcher = w
	defer func() { a.store.watcher = nil }()

	report, err := a.Run(ctx)
	if err != nil {
		return err
	}
	onReport(report)

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for batch := range w.Batches() {
		a.logger.Info("Documents changed", "changes", len(batch), "first", batch[0].Path)
		report, err := a.Run(ctx)
		if err != nil {
			a.logger.Error("Run failed", "error", err)
			continue
		}
		onReport(report)
	}
	if dropped := w.DroppedBatches(); dropped > 0 {
		a.logger.Warn("Change batches were dropped", "dropped", dropped)
	}
	return nil
}

// Close releases the notifier connection.
func (a *App) Close() error {
	return a.notifier.Close()
}

// watchedStore records every rewrite with the watcher before writing, so the
// resulting file event is recognized as already seen.
type watchedStore struct {
	*collection.FS
	watcher *watch.Watcher
}

// Write implements collection.Store.
func (s *watchedStore) Write(ctx context.Context, id string, content []byte) error {
	if s.watcher != nil {
		s.watcher.Record(id, content)
	}
	return s.FS.Write(ctx, id, content)
}
