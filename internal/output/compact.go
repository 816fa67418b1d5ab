package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
)

// WidgetCompact renders a render model one row per line.
func WidgetCompact(w io.Writer, m reader.RenderModel) {
	if m.Empty() {
		fmt.Fprintln(w, "empty")
		return
	}

	head := "pending:" + strconv.Itoa(m.PendingCount) + " overflow:" + strconv.Itoa(m.Overflow)
	if m.Updated != "" {
		head += " updated:" + m.Updated
	}
	if m.DisplayName != "" {
		head = m.DisplayName + " " + head
	}
	fmt.Fprintln(w, head)

	for _, it := range m.Items {
		fmt.Fprintln(w, "  "+itemLine(it))
	}
}

// SnapshotCompact renders a published snapshot in compact format.
func SnapshotCompact(w io.Writer, s *snapshot.Snapshot) {
	fmt.Fprintf(w, "%s tasks:%d pending:%d at:%s\n",
		s.PublishID, len(s.Tasks), s.PendingCount, snapshot.FormatTimestamp(s.GeneratedAt))
	for _, t := range s.Tasks {
		fmt.Fprintln(w, "  "+taskLine(t))
	}
}

// TimelineCompact renders refresh instants one per line.
func TimelineCompact(w io.Writer, refreshes []time.Time, republish time.Time) {
	for _, ts := range refreshes {
		fmt.Fprintln(w, "refresh "+ts.Format(time.RFC3339))
	}
	fmt.Fprintln(w, "publish "+republish.Format(time.RFC3339))
}

func itemLine(it reader.Item) string {
	mark := "[ ]"
	if it.Completed {
		mark = "[x]"
	}
	return mark + " " + it.Text + " (" + string(it.Category) + ")"
}

func taskLine(t snapshot.Task) string {
	var b strings.Builder
	if t.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(t.ID + " " + t.Title)
	if t.HasTime() {
		b.WriteString(" @" + t.Time)
	}
	if t.Category != "" {
		b.WriteString(" (" + string(t.Category) + ")")
	}
	return b.String()
}
