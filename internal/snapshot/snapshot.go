// Package snapshot defines the widget task snapshot and its persisted form.
package snapshot

import (
	"errors"
	"fmt"
	"time"
)

// CurrentVersion is the schema version written by this binary.
const CurrentVersion = 1

// ErrMalformed reports stored bytes that do not parse into a valid snapshot.
var ErrMalformed = errors.New("malformed snapshot")

// Task is one actionable item shown on the widget.
type Task struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Category  Category `json:"type,omitempty" yaml:"category,omitempty"`
	Time      string   `json:"time,omitempty" yaml:"time,omitempty"` // "HH:MM", empty when unscheduled
	Completed bool     `json:"isCompleted" yaml:"completed,omitempty"`
}

// HasTime reports whether the task carries a valid time of day. Tasks with
// an unparseable time are treated as unscheduled, matching Order.
func (t Task) HasTime() bool {
	_, ok := ParseClock(t.Time)
	return ok
}

// Snapshot is the unit published by the writer and consumed by renderers.
// Tasks are stored in display order; truncation happens only when rendering.
type Snapshot struct {
	Version      int
	Tasks        []Task
	PendingCount int
	DisplayName  string
	GeneratedAt  time.Time
	PublishID    string
}

// Validate checks the snapshot invariants.
func (s *Snapshot) Validate() error {
	if s.PendingCount < 0 {
		return fmt.Errorf("%w: pending count %d is negative", ErrMalformed, s.PendingCount)
	}
	for i, t := range s.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %d has no id", ErrMalformed, i)
		}
		if t.Title == "" {
			return fmt.Errorf("%w: task %q has no title", ErrMalformed, t.ID)
		}
	}
	if pending := CountPending(s.Tasks); s.PendingCount < pending {
		return fmt.Errorf("%w: pending count %d below %d incomplete tasks",
			ErrMalformed, s.PendingCount, pending)
	}
	return nil
}

// CountPending returns the number of tasks not yet completed.
func CountPending(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}
