package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
	"github.com/twiced-technology-gmbh/pawglance/internal/tui"
	"github.com/twiced-technology-gmbh/pawglance/internal/watcher"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Open the live widget preview",
	Long: `Renders the widget for the configured channel in the terminal. The view
reloads when the snapshot changes and on the refresh cadence.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("size", config.SizeMedium, "initial widget size: small, medium or large")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	r, err := e.newReader()
	if err != nil {
		return err
	}

	size := config.SizeMedium
	if f := cmd.Flags().Lookup("size"); f != nil {
		size = f.Value.String()
	}
	if _, err := e.cfg.MaxItems(size); err != nil {
		return err
	}

	model := tui.NewPreview(r, e.cfg.Widgets, e.cfg.Policy(), size)
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if e.cfg.Store.Backend == store.BackendFile {
		go startPreviewWatcher(ctx, e.cfg, p)
	}

	_, err = p.Run()
	return err
}

// startPreviewWatcher reloads the preview whenever the channel's snapshot
// file is replaced.
func startPreviewWatcher(ctx context.Context, cfg *config.Config, p *tea.Program) {
	w, err := watcher.New([]string{cfg.StorePath()}, func() {
		p.Send(tui.ReloadMsg{})
	}, watcher.WithFilter(watcher.Base(store.FileName(cfg.Channel))))
	if err != nil {
		return // non-fatal: the preview still refreshes on its cadence
	}
	defer w.Close()
	w.Run(ctx, nil)
}
