// Package tui implements the live terminal widget preview.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
	"github.com/twiced-technology-gmbh/pawglance/internal/schedule"
)

// Layout constants.
const (
	cardWidth     = 32
	previewChrome = 2 // blank line + status bar below the card
)

// Loader derives the current render model for a row budget.
type Loader interface {
	Load(ctx context.Context, maxItems int) reader.RenderModel
}

type keyMap struct {
	Small  key.Binding
	Medium key.Binding
	Large  key.Binding
	Next   key.Binding
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Small, k.Medium, k.Large, k.Next},
		{k.Reload, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Small:  key.NewBinding(key.WithKeys("1", "s"), key.WithHelp("1/s", "small")),
	Medium: key.NewBinding(key.WithKeys("2", "m"), key.WithHelp("2/m", "medium")),
	Large:  key.NewBinding(key.WithKeys("3", "l"), key.WithHelp("3/l", "large")),
	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next size")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Preview is the top-level bubbletea model. It renders one widget size at a
// time and reloads on store changes and on the refresh cadence.
type Preview struct {
	loader  Loader
	widgets config.WidgetsConfig
	policy  schedule.Policy
	now     func() time.Time

	size        int // index into config.Sizes
	model       reader.RenderModel
	lastRefresh time.Time
	help        help.Model
	width       int
	height      int
}

// NewPreview creates a Preview for loader. size is the initial widget size.
func NewPreview(loader Loader, widgets config.WidgetsConfig, policy schedule.Policy, size string) *Preview {
	p := &Preview{
		loader:  loader,
		widgets: widgets,
		policy:  policy,
		now:     time.Now,
		help:    help.New(),
	}
	for i, s := range config.Sizes {
		if s == size {
			p.size = i
		}
	}
	p.reload()
	return p
}

// SetNow overrides the clock used for refresh bookkeeping (for testing).
func (p *Preview) SetNow(fn func() time.Time) {
	p.now = fn
}

// Size returns the widget size currently shown.
func (p *Preview) Size() string {
	return config.Sizes[p.size]
}

// Model returns the render model currently shown.
func (p *Preview) Model() reader.RenderModel {
	return p.model
}

// Init implements tea.Model.
func (p *Preview) Init() tea.Cmd {
	return p.tickCmd()
}

// Update implements tea.Model.
func (p *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p.handleKey(msg)
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.help.Width = msg.Width
		return p, nil
	case ReloadMsg:
		p.reload()
		return p, nil
	case TickMsg:
		if p.policy.Due(p.lastRefresh, p.now()) {
			p.reload()
		}
		return p, p.tickCmd()
	}
	return p, nil
}

func (p *Preview) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return p, tea.Quit
	case key.Matches(msg, keys.Small):
		p.setSize(0)
	case key.Matches(msg, keys.Medium):
		p.setSize(1)
	case key.Matches(msg, keys.Large):
		p.setSize(2) //nolint:mnd // index of large
	case key.Matches(msg, keys.Next):
		p.setSize((p.size + 1) % len(config.Sizes))
	case key.Matches(msg, keys.Reload):
		p.reload()
	case key.Matches(msg, keys.Help):
		p.help.ShowAll = !p.help.ShowAll
	}
	return p, nil
}

func (p *Preview) setSize(i int) {
	if i == p.size {
		return
	}
	p.size = i
	p.reload()
}

func (p *Preview) maxItems() int {
	switch config.Sizes[p.size] {
	case config.SizeSmall:
		return p.widgets.Small
	case config.SizeLarge:
		return p.widgets.Large
	default:
		return p.widgets.Medium
	}
}

// reload re-derives the render model. Loads never fail; a missing or broken
// snapshot shows the empty state.
func (p *Preview) reload() {
	p.model = p.loader.Load(context.Background(), p.maxItems())
	p.lastRefresh = p.now()
}

// View implements tea.Model.
func (p *Preview) View() string {
	if p.width == 0 {
		return "Loading..."
	}

	card := output.WidgetCard(p.model, cardWidth)
	body := lipgloss.Place(p.width, max(p.height-previewChrome-lipgloss.Height(p.help.View(keys)), 0),
		lipgloss.Center, lipgloss.Center, card)
	return body + "\n" + p.renderStatusBar() + "\n" + p.help.View(keys)
}

func (p *Preview) renderStatusBar() string {
	next := p.policy.NextRefreshAfter(p.lastRefresh)
	status := fmt.Sprintf(" %s · %d rows | refreshed %s | next %s",
		p.Size(), p.maxItems(), p.lastRefresh.Format("15:04:05"), next.Format("15:04"))
	return statusBarStyle.Render(truncate(status, p.width))
}

// --- Messages ---

// ReloadMsg is sent by the file watcher when the store changes.
type ReloadMsg struct{}

// TickMsg is sent when the refresh policy says the reader is due.
type TickMsg struct{}

// tickCmd schedules the next TickMsg at the next refresh instant.
func (p *Preview) tickCmd() tea.Cmd {
	wait := max(p.policy.NextRefreshAfter(p.lastRefresh).Sub(p.now()), time.Second)
	return tea.Tick(wait, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var statusBarStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	Background(lipgloss.Color("236"))

// truncate shortens s to maxLen visible characters.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || lipgloss.Width(s) <= maxLen {
		return s
	}
	const ellipsis = "..."
	r := []rune(s)
	if maxLen <= len(ellipsis) {
		return string(r[:min(maxLen, len(r))])
	}
	return strings.TrimRight(string(r[:min(maxLen-len(ellipsis), len(r))]), " ") + ellipsis
}
