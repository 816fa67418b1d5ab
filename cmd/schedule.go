package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print upcoming refresh and republish instants",
	Long: `Prints the next reader refresh instants for the configured refresh interval
and the next instant the writer republishes without task changes.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().IntP("count", "n", 4, "number of refresh instants") //nolint:mnd // default timeline length
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("count")
	if n < 1 {
		return clierr.Newf(clierr.InvalidInput, "--count must be >= 1, got %d", n)
	}

	policy := cfg.Policy()
	now := time.Now().In(cfg.Location())
	refreshes := policy.Timeline(now, n)
	republish := policy.NextPublishAfter(now)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, map[string]any{
			"interval":  policy.Interval.String(),
			"refreshes": refreshes,
			"republish": republish,
			"rollover":  policy.NextRolloverAfter(now),
		})
	case output.FormatCompact:
		output.TimelineCompact(os.Stdout, refreshes, republish)
	default:
		output.TimelineTable(os.Stdout, refreshes, republish, policy.Interval)
	}
	return nil
}
