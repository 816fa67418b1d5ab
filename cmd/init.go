package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
	"github.com/twiced-technology-gmbh/pawglance/internal/tasksource"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a pawglance directory",
	Long:  `Creates a .pawglance directory with config.yml, a tasks/ source directory and a store/ directory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "display name shown on the widget, e.g. the pet's name")
	initCmd.Flags().String("backend", config.DefaultStoreBackend, "store backend: file or badger")
	initCmd.Flags().Bool("sample", false, "write sample task files")
	rootCmd.AddCommand(initCmd)
}

// sampleTasks is the demo task set written by init --sample.
var sampleTasks = []snapshot.Task{
	{ID: "feed-morning", Title: "Feed", Category: snapshot.CategoryFood, Time: "08:00"},
	{ID: "rabies-vaccine", Title: "Vaccine", Category: snapshot.CategoryVaccine},
	{ID: "brush", Title: "Brush", Category: snapshot.CategoryGrooming, Time: "18:00", Completed: true},
	{ID: "heartworm-pill", Title: "Heartworm pill", Category: snapshot.CategoryMedicine, Time: "09:30"},
	{ID: "vet-checkup", Title: "Vet checkup", Category: snapshot.CategoryVet, Time: "14:15"},
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.ConfigAlreadyExists, "pawglance already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	backend, _ := cmd.Flags().GetString("backend")

	cfg := config.NewDefault(name)
	cfg.SetDir(absDir)
	cfg.Store.Backend = backend
	if flagChannel != "" {
		cfg.Channel = flagChannel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Store.Backend == store.BackendMemory {
		return clierr.New(clierr.InvalidInput, "the memory backend cannot be persisted; use file or badger")
	}

	const dirMode = 0o750
	for _, p := range []string{cfg.TasksPath(), cfg.StorePath()} {
		if err := os.MkdirAll(p, dirMode); err != nil {
			return fmt.Errorf("creating %s: %w", p, err)
		}
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if sample, _ := cmd.Flags().GetBool("sample"); sample {
		for _, t := range sampleTasks {
			path := filepath.Join(cfg.TasksPath(), tasksource.FileName(t))
			if err := tasksource.Write(path, &tasksource.Entry{Task: t}); err != nil {
				return fmt.Errorf("writing sample task: %w", err)
			}
		}
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     absDir,
			"channel": cfg.Channel,
			"config":  cfg.ConfigPath(),
			"tasks":   cfg.TasksPath(),
			"store":   cfg.StorePath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized pawglance in %s", absDir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:   %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Store:   %s (%s)", cfg.StorePath(), cfg.Store.Backend)
	output.Messagef(os.Stdout, "  Channel: %s", cfg.Channel)
	output.Messagef(os.Stdout, "  Hint:    Publish a snapshot with: pawglance publish")
	return nil
}
