package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
)

const markdownWrap = 80

// WidgetMarkdown renders a render model as a markdown document.
func WidgetMarkdown(m reader.RenderModel) string {
	var b strings.Builder

	title := "Today"
	if m.DisplayName != "" {
		title = m.DisplayName + " today"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	switch {
	case m.Empty():
		b.WriteString("_No snapshot available. Open the app to sync._\n")
		return b.String()
	case m.NoTasks:
		b.WriteString("No tasks today.\n")
	default:
		fmt.Fprintf(&b, "**%d pending**", m.PendingCount)
		if m.AllDone {
			b.WriteString(", all done")
		}
		b.WriteString("\n\n")
		for _, it := range m.Items {
			mark := " "
			if it.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s _(%s)_\n", mark, it.Text, it.Category)
		}
		if label := m.OverflowLabel(); label != "" {
			fmt.Fprintf(&b, "\n_%s_\n", label)
		}
	}
	if m.Updated != "" {
		fmt.Fprintf(&b, "\nUpdated %s\n", m.Updated)
	}
	return b.String()
}

// Markdown renders md for the terminal with glamour. Without color the
// plain "notty" style is used.
func Markdown(w io.Writer, md string) error {
	style := "dark"
	if !colored {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
