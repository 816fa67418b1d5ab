// Package reader derives bounded render models from stored snapshots.
//
// Derive is pure and never fails: absent or malformed input yields an
// EmptyState model that renderers draw as a neutral placeholder.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
	"github.com/twiced-technology-gmbh/pawglance/internal/metrics"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
)

// State distinguishes a usable snapshot from no usable data.
type State string

const (
	StateEmpty State = "empty"
	StateReady State = "ready"
)

const updatedLayout = "15:04"

// Item is one visible widget row.
type Item struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Title     string            `json:"title"`
	Time      string            `json:"time,omitempty"`
	Completed bool              `json:"completed"`
	Category  snapshot.Category `json:"category"`
	Style     Style             `json:"style"`
}

// RenderModel is the display-ready derivation of one snapshot.
type RenderModel struct {
	State        State     `json:"state"`
	Items        []Item    `json:"items"`
	PendingCount int       `json:"pendingCount"`
	Overflow     int       `json:"overflow"`
	DisplayName  string    `json:"displayName,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt,omitzero"`
	Updated      string    `json:"updated,omitempty"`

	// NoTasks is set when the snapshot is valid but holds no tasks today.
	NoTasks bool `json:"noTasks"`
	// AllDone is set when tasks exist and none is pending.
	AllDone bool `json:"allDone"`
}

// Empty reports whether m is the EmptyState variant.
func (m RenderModel) Empty() bool {
	return m.State != StateReady
}

// OverflowLabel returns the "+N more" affordance, or "" without overflow.
func (m RenderModel) OverflowLabel() string {
	if m.Overflow <= 0 {
		return ""
	}
	return fmt.Sprintf("+%d more", m.Overflow)
}

type deriveConfig struct {
	loc *time.Location
}

// DeriveOption configures Derive.
type DeriveOption func(*deriveConfig)

// WithLocation sets the zone used for the Updated label. Default is time.Local.
func WithLocation(loc *time.Location) DeriveOption {
	return func(c *deriveConfig) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// Derive builds the render model for raw, the stored snapshot bytes. A nil
// raw means the key is absent. The stored order is trusted and not re-sorted.
// maxItems <= 0 shows no rows and reports every task as overflow.
func Derive(raw []byte, maxItems int, opts ...DeriveOption) RenderModel {
	model, _ := derive(raw, maxItems, opts...)
	return model
}

func derive(raw []byte, maxItems int, opts ...DeriveOption) (RenderModel, error) {
	cfg := deriveConfig{loc: time.Local}
	for _, opt := range opts {
		opt(&cfg)
	}

	if raw == nil {
		return emptyModel(), store.ErrNotFound
	}
	snap, err := snapshot.Decode(raw)
	if err != nil {
		return emptyModel(), err
	}

	visible := min(max(maxItems, 0), len(snap.Tasks))
	items := make([]Item, visible)
	for i, t := range snap.Tasks[:visible] {
		items[i] = itemFor(t)
	}

	model := RenderModel{
		State:        StateReady,
		Items:        items,
		PendingCount: snap.PendingCount,
		Overflow:     len(snap.Tasks) - visible,
		DisplayName:  snap.DisplayName,
		GeneratedAt:  snap.GeneratedAt,
		NoTasks:      len(snap.Tasks) == 0,
		AllDone:      len(snap.Tasks) > 0 && snap.PendingCount == 0,
	}
	if !snap.GeneratedAt.IsZero() {
		model.Updated = snap.GeneratedAt.In(cfg.loc).Format(updatedLayout)
	}
	return model, nil
}

func emptyModel() RenderModel {
	return RenderModel{State: StateEmpty, Items: []Item{}}
}

func itemFor(t snapshot.Task) Item {
	category := snapshot.NormalizeCategory(string(t.Category))
	if !category.Known() {
		category = snapshot.CategoryOther
	}

	// An unparseable time sorts as unscheduled, so it is not shown either.
	text, tm := t.Title, ""
	if t.HasTime() {
		tm = t.Time
		text = tm + " - " + t.Title
	}
	return Item{
		ID:        t.ID,
		Text:      text,
		Title:     t.Title,
		Time:      tm,
		Completed: t.Completed,
		Category:  category,
		Style:     StyleFor(category),
	}
}

// Reader loads the snapshot for one store key and derives render models.
// It is safe for concurrent use; loads are side-effect free on the store.
type Reader struct {
	store   store.Store
	key     string
	loc     *time.Location
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) { r.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

// WithDisplayLocation sets the zone used for the Updated label.
func WithDisplayLocation(loc *time.Location) Option {
	return func(r *Reader) { r.loc = loc }
}

// New creates a Reader for key.
func New(st store.Store, key string, opts ...Option) (*Reader, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	r := &Reader{
		store:  st,
		key:    key,
		loc:    time.Local,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("channel", key)
	return r, nil
}

// Key returns the store key the reader loads.
func (r *Reader) Key() string { return r.key }

// Load reads the latest snapshot and derives its render model. Store and
// decode failures degrade to EmptyState and are only logged.
func (r *Reader) Load(ctx context.Context, maxItems int) RenderModel {
	raw, err := r.store.Get(ctx, r.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.metrics.Read(r.key, metrics.ReadAbsent)
		return emptyModel()
	case err != nil:
		r.metrics.Read(r.key, metrics.ReadUnavailable)
		r.logger.Warn("snapshot store unavailable", "error", err)
		return emptyModel()
	}

	model, err := derive(raw, maxItems, WithLocation(r.loc))
	if err != nil {
		r.metrics.Read(r.key, metrics.ReadMalformed)
		r.logger.Warn("discarding malformed snapshot", "error", err)
		return model
	}
	r.metrics.Read(r.key, metrics.ReadReady)
	r.logger.Debug("snapshot loaded",
		"tasks", len(model.Items)+model.Overflow,
		"pending", model.PendingCount,
		"overflow", model.Overflow)
	return model
}
