// Package watch reports debounced changes to proposal documents.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// batchChannelBuffer is the size of the batch channel.
	batchChannelBuffer = 16

	// DefaultDebounce is used when no debounce is configured.
	DefaultDebounce = 500 * time.Millisecond
)

// DefaultExcludeDirs are directory names that are never watched.
var DefaultExcludeDirs = []string{".git", "node_modules", "vendor"}

// Operation indicates the type of document change.
type Operation string

// Document change operations.
const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Change is one document change, with Path relative to the root using
// forward slashes.
type Change struct {
	Path      string
	Operation Operation
}

// Batch is the set of changes collected during one debounce window.
type Batch []Change

// Matcher reports whether a root-relative, slash-separated path is a watched
// document.
type Matcher func(rel string) bool

// Watcher watches a directory tree and emits batches of document changes.
type Watcher struct {
	root     string
	match    Matcher
	debounce time.Duration
	excludes map[string]bool
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	batches chan Batch
	dropped atomic.Int64
}

// New creates a watcher over root. A nil matcher accepts markdown files.
func New(root string, match Matcher, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if match == nil {
		match = func(rel string) bool {
			ext := strings.ToLower(filepath.Ext(rel))
			return ext == ".md" || ext == ".mdx"
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	excludes := make(map[string]bool, len(DefaultExcludeDirs))
	for _, dir := range DefaultExcludeDirs {
		excludes[dir] = true
	}

	return &Watcher{
		root:     root,
		match:    match,
		debounce: debounce,
		excludes: excludes,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		batches:  make(chan Batch, batchChannelBuffer),
	}, nil
}

// Batches returns the channel of change batches. It is closed when the
// watcher stops.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Start adds watches below root and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Document watcher started",
		"root", w.root,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Record stores the content hash of a document so that writing the same
// content back does not produce a change.
func (w *Watcher) Record(rel string, content []byte) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[rel] = contentHash(content)
}

// DroppedBatches returns the number of batches dropped because the consumer
// fell behind.
func (w *Watcher) DroppedBatches() int64 {
	return w.dropped.Load()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) excluded(base string) bool {
	return w.excludes[base] || (strings.HasPrefix(base, ".") && base != ".")
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.batches)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if !w.match(rel) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.handleNewDirectory(event.Name)
			}
		}
		return
	}

	for _, part := range strings.Split(rel, "/") {
		if w.excludes[part] {
			return
		}
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Document change detected", "path", rel, "op", event.Op.String())
}

func (w *Watcher) handleNewDirectory(path string) {
	if w.excluded(filepath.Base(path)) {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// flushPending turns the accumulated events into one batch.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var batch Batch
	for path, op := range toProcess {
		rel, _ := w.relative(path)
		if change, ok := w.classify(path, rel, op); ok {
			batch = append(batch, change)
		}
	}
	if len(batch) == 0 {
		return
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	select {
	case w.batches <- batch:
		w.logger.Debug("Sent change batch", "changes", len(batch))
	default:
		dropped := w.dropped.Add(1)
		w.logger.Warn("Batch channel full, dropping batch",
			"changes", len(batch),
			"total_dropped", dropped)
	}
}

func (w *Watcher) classify(path, rel string, op fsnotify.Op) (Change, bool) {
	change := Change{Path: rel}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		w.hashMu.Lock()
		delete(w.hashes, rel)
		w.hashMu.Unlock()
		change.Operation = OpDelete
		return change, true
	}
	if err != nil {
		w.logger.Warn("Failed to read changed document", "path", rel, "error", err)
		return change, false
	}

	hash := contentHash(content)
	w.hashMu.Lock()
	old, had := w.hashes[rel]
	w.hashes[rel] = hash
	w.hashMu.Unlock()

	if had && old == hash {
		return change, false
	}
	if op.Has(fsnotify.Create) || !had {
		change.Operation = OpCreate
	} else {
		change.Operation = OpModify
	}
	return change, true
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
