package snapshot

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampFormat is RFC 3339 at second precision.
const timestampFormat = time.RFC3339

// legacyTimestampFormat is the zone-less form written by the mobile app.
const legacyTimestampFormat = "2006-01-02T15:04:05"

// record is the persisted layout. Field names match what the mobile widgets read.
type record struct {
	Version      int     `json:"version,omitempty"`
	Tasks        *[]Task `json:"todayTasks"`
	PendingCount int     `json:"pendingCount"`
	DisplayName  string  `json:"displayName,omitempty"`
	LastUpdate   string  `json:"lastUpdate,omitempty"`
	PublishID    string  `json:"publishId,omitempty"`
}

// Encode serializes a snapshot to its persisted JSON form.
func Encode(s *Snapshot) ([]byte, error) {
	tasks := s.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	rec := record{
		Version:      s.Version,
		Tasks:        &tasks,
		PendingCount: s.PendingCount,
		DisplayName:  s.DisplayName,
		PublishID:    s.PublishID,
	}
	if !s.GeneratedAt.IsZero() {
		rec.LastUpdate = FormatTimestamp(s.GeneratedAt)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses persisted bytes into a validated snapshot. Unknown fields are
// ignored; todayTasks is required and may not be null. Any parse or
// validation failure wraps ErrMalformed.
func Decode(data []byte) (*Snapshot, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if rec.Tasks == nil {
		return nil, fmt.Errorf("%w: todayTasks is missing", ErrMalformed)
	}

	s := &Snapshot{
		Version:      rec.Version,
		Tasks:        *rec.Tasks,
		PendingCount: rec.PendingCount,
		DisplayName:  rec.DisplayName,
		PublishID:    rec.PublishID,
	}
	if rec.LastUpdate != "" {
		ts, err := ParseTimestamp(rec.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		s.GeneratedAt = ts
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FormatTimestamp renders t in UTC at second precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timestampFormat)
}

// ParseTimestamp accepts RFC 3339 and the zone-less legacy form (read as UTC).
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampFormat, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(legacyTimestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}
