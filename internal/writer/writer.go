// Package writer recomputes and publishes widget snapshots from the
// application's task set.
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
	"github.com/twiced-technology-gmbh/pawglance/internal/metrics"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
)

// ErrInvalidTask reports input the writer refuses to publish.
var ErrInvalidTask = errors.New("invalid task")

// Writer publishes snapshots for one store key. It is safe for concurrent use.
type Writer struct {
	store       store.Store
	key         string
	displayName string
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics

	mu sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the clock used to stamp snapshots.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithDisplayName sets the context label shown by renderers (e.g. the pet's name).
func WithDisplayName(name string) Option {
	return func(w *Writer) { w.displayName = name }
}

// New creates a Writer that publishes under key.
func New(st store.Store, key string, opts ...Option) (*Writer, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	w := &Writer{
		store:  st,
		key:    key,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("channel", key)
	return w, nil
}

// Key returns the store key the writer publishes under.
func (w *Writer) Key() string { return w.key }

// Publish orders tasks, stamps a generation time strictly after the
// previously stored snapshot, and replaces the stored snapshot. tasks must be
// the already-filtered set relevant today.
//
// A store failure is returned wrapped in store.ErrUnavailable; callers retry
// on their next trigger.
func (w *Writer) Publish(ctx context.Context, tasks []snapshot.Task) (*snapshot.Snapshot, error) {
	if err := validateTasks(tasks); err != nil {
		w.metrics.PublishFailed(w.key, metrics.PublishInvalid)
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	snap := &snapshot.Snapshot{
		Version:      snapshot.CurrentVersion,
		Tasks:        snapshot.Order(tasks),
		PendingCount: snapshot.CountPending(tasks),
		DisplayName:  w.displayName,
		PublishID:    ulid.Make().String(),
	}

	err := w.store.Update(ctx, w.key, func(current []byte) ([]byte, error) {
		snap.GeneratedAt = w.nextTimestamp(current)
		return snapshot.Encode(snap)
	})
	if err != nil {
		w.metrics.PublishFailed(w.key, metrics.PublishFailed)
		w.logger.Warn("snapshot publish failed", "error", err)
		return nil, fmt.Errorf("publishing snapshot: %w", err)
	}

	w.metrics.PublishSucceeded(w.key, len(snap.Tasks), snap.PendingCount, snap.GeneratedAt)
	w.logger.Info("snapshot published",
		"publish_id", snap.PublishID,
		"tasks", len(snap.Tasks),
		"pending", snap.PendingCount,
		"generated_at", snapshot.FormatTimestamp(snap.GeneratedAt))
	return snap, nil
}

// nextTimestamp returns the current second, bumped past the previous
// snapshot's generation time when the clock has not advanced.
func (w *Writer) nextTimestamp(previous []byte) time.Time {
	ts := w.now().UTC().Truncate(time.Second)
	if previous == nil {
		return ts
	}

	prev, err := snapshot.Decode(previous)
	if err != nil {
		w.logger.Warn("ignoring malformed previous snapshot", "error", err)
		return ts
	}
	if ts.After(prev.GeneratedAt) {
		return ts
	}

	if ts.Before(prev.GeneratedAt) {
		w.logger.Warn("clock regression detected",
			"now", snapshot.FormatTimestamp(ts),
			"previous", snapshot.FormatTimestamp(prev.GeneratedAt))
	}
	w.metrics.TimestampBumped()
	return prev.GeneratedAt.Add(time.Second)
}

func validateTasks(tasks []snapshot.Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %d has no id", ErrInvalidTask, i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: task %q has no title", ErrInvalidTask, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidTask, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
