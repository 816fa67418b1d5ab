package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
)

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to the given writer as JSON.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = JSON(w, ErrorResponse{Error: msg, Code: code, Details: details})
}

// SnapshotDocument is the published snapshot as printed by publish --json.
// The stored bytes stay in the store's own layout.
type SnapshotDocument struct {
	Channel      string          `json:"channel"`
	PublishID    string          `json:"publishId,omitempty"`
	LastUpdate   string          `json:"lastUpdate"`
	PendingCount int             `json:"pendingCount"`
	DisplayName  string          `json:"displayName,omitempty"`
	Tasks        []snapshot.Task `json:"todayTasks"`
}

// SnapshotJSON writes s as a SnapshotDocument for channel.
func SnapshotJSON(w io.Writer, channel string, s *snapshot.Snapshot) error {
	tasks := s.Tasks
	if tasks == nil {
		tasks = []snapshot.Task{}
	}
	return JSON(w, SnapshotDocument{
		Channel:      channel,
		PublishID:    s.PublishID,
		LastUpdate:   snapshot.FormatTimestamp(s.GeneratedAt),
		PendingCount: s.PendingCount,
		DisplayName:  s.DisplayName,
		Tasks:        tasks,
	})
}
