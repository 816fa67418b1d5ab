package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	colored     = true
)

// DisableColor strips all styling from table and card output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	colored = false
}

// categoryStyle returns the accent style for an item's category color.
func categoryStyle(s reader.Style) lipgloss.Style {
	if !colored {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#" + s.Color))
}

// WidgetTable renders a render model as a formatted table.
func WidgetTable(w io.Writer, m reader.RenderModel) {
	if m.Empty() {
		fmt.Fprintln(w, dimStyle.Render("No snapshot available."))
		return
	}

	title := "Today"
	if m.DisplayName != "" {
		title = m.DisplayName + " · today"
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	summary := fmt.Sprintf("%d pending", m.PendingCount)
	if m.Updated != "" {
		summary += ", updated " + m.Updated
	}
	fmt.Fprintln(w, dimStyle.Render(summary))
	fmt.Fprintln(w)

	switch {
	case m.NoTasks:
		fmt.Fprintln(w, "No tasks today.")
		return
	case len(m.Items) == 0:
		fmt.Fprintln(w, dimStyle.Render(m.OverflowLabel()))
		return
	}

	const pad = 2
	timeW, titleW, catW := 6, 6, 10
	for _, it := range m.Items {
		timeW = max(timeW, len(it.Time)+pad)
		titleW = max(titleW, min(lipgloss.Width(it.Title)+pad, 40)) //nolint:mnd // max title column width
		catW = max(catW, len(it.Category)+pad)
	}

	header := fmt.Sprintf("%-4s %-*s %-*s %-*s", "", timeW, "TIME", titleW, "TASK", catW, "CATEGORY")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, it := range m.Items {
		tm := it.Time
		if tm == "" {
			tm = dimStyle.Render("--")
		}
		row := fmt.Sprintf("%s %s %s %s",
			padRight(checkbox(it.Completed), 4), //nolint:mnd // checkbox column width
			padRight(tm, timeW),
			padRight(itemTitle(it, it.Title, titleW-pad), titleW),
			categoryStyle(it.Style).Render(string(it.Category)))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}

	if label := m.OverflowLabel(); label != "" {
		fmt.Fprintln(w, dimStyle.Render(label))
	}
}

// SnapshotTable renders a published snapshot.
func SnapshotTable(w io.Writer, s *snapshot.Snapshot) {
	fmt.Fprintln(w, titleStyle.Render("Published "+snapshot.FormatTimestamp(s.GeneratedAt)))
	printField(w, "Publish ID", s.PublishID)
	printField(w, "Tasks", strconv.Itoa(len(s.Tasks)))
	printField(w, "Pending", strconv.Itoa(s.PendingCount))
	if s.DisplayName != "" {
		printField(w, "Name", s.DisplayName)
	}
	if len(s.Tasks) == 0 {
		return
	}

	fmt.Fprintln(w)
	for i, t := range s.Tasks {
		tm := t.Time
		if tm == "" {
			tm = "--"
		}
		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		}
		fmt.Fprintf(w, "%3d. %s %-6s %s %s\n", i+1, checkbox(t.Completed), tm, title,
			dimStyle.Render("("+t.ID+")"))
	}
}

// TimelineTable renders upcoming refresh and republish instants.
func TimelineTable(w io.Writer, refreshes []time.Time, republish time.Time, interval time.Duration) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-4s %s", "#", "READER REFRESH")))
	for i, ts := range refreshes {
		fmt.Fprintf(w, "%-4d %s\n", i+1, ts.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintln(w)
	printField(w, "Interval", interval.String())
	printField(w, "Republish", republish.Format("2006-01-02 15:04 MST"))
}

// WidgetCard renders a render model as a bordered widget of the given inner
// width, the way a home-screen renderer would lay it out.
func WidgetCard(m reader.RenderModel, width int) string {
	var lines []string

	header := "Today"
	if m.DisplayName != "" {
		header = m.DisplayName
	}

	switch {
	case m.Empty():
		lines = append(lines, titleStyle.Render(header), "", dimStyle.Render("Open the app to sync"))
	case m.NoTasks:
		lines = append(lines, titleStyle.Render(header), "", "No tasks today")
	default:
		pending := fmt.Sprintf("%d to do", m.PendingCount)
		gap := max(1, width-lipgloss.Width(header)-lipgloss.Width(pending))
		lines = append(lines, titleStyle.Render(header)+strings.Repeat(" ", gap)+pending)
		if m.AllDone {
			lines = append(lines, "All done!")
		}
		for _, it := range m.Items {
			lines = append(lines, cardRow(it, width))
		}
		if label := m.OverflowLabel(); label != "" {
			lines = append(lines, dimStyle.Render(label))
		}
	}
	if m.Updated != "" {
		lines = append(lines, dimStyle.Render("Updated "+m.Updated))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(width + 2). //nolint:mnd // horizontal padding
		Render(strings.Join(lines, "\n"))
}

func cardRow(it reader.Item, width int) string {
	marker := categoryStyle(it.Style).Render("●")
	if it.Completed {
		marker = dimStyle.Render("✓")
	}
	const markerW = 2
	return marker + " " + itemTitle(it, it.Text, width-markerW)
}

// itemTitle returns text truncated to limit, struck through when the item is
// completed.
func itemTitle(it reader.Item, text string, limit int) string {
	const ellipsis = "..."
	if r := []rune(text); limit > len(ellipsis) && len(r) > limit {
		text = string(r[:limit-len(ellipsis)]) + ellipsis
	}
	if it.Completed {
		return doneStyle.Render(text)
	}
	return text
}

func checkbox(done bool) string {
	if done {
		return dimStyle.Render("[x]")
	}
	return "[ ]"
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
