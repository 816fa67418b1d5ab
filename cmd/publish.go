package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
	"github.com/twiced-technology-gmbh/pawglance/internal/writer"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a snapshot of today's tasks",
	Long: `Reads the task source, orders the tasks and publishes one snapshot under the
configured channel. With --dry-run the snapshot is computed against an
in-memory store and printed; the shared store is never opened.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().Bool("dry-run", false, "compute and print the snapshot without storing it")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return runPublishDryRun()
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	tasks, err := readTasks(e.cfg)
	if err != nil {
		return err
	}
	w, err := e.newWriter()
	if err != nil {
		return err
	}
	snap, err := w.Publish(context.Background(), tasks)
	if err != nil {
		return err
	}
	return printSnapshot(e.cfg.Channel, snap)
}

// runPublishDryRun publishes into a throwaway memory store. The configured
// backend is left closed, so a daemon holding it does not block the run.
func runPublishDryRun() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	tasks, err := readTasks(cfg)
	if err != nil {
		return err
	}
	w, err := writer.New(store.NewMemory(), cfg.Channel,
		writer.WithLogger(logger),
		writer.WithDisplayName(cfg.DisplayName))
	if err != nil {
		return err
	}
	snap, err := w.Publish(context.Background(), tasks)
	if err != nil {
		return err
	}
	return printSnapshot(cfg.Channel, snap)
}

func printSnapshot(channel string, snap *snapshot.Snapshot) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.SnapshotJSON(os.Stdout, channel, snap)
	case output.FormatCompact:
		output.SnapshotCompact(os.Stdout, snap)
	default:
		output.SnapshotTable(os.Stdout, snap)
	}
	return nil
}
