package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the widget view of the current snapshot",
	Long: `Loads the snapshot for the configured channel and prints the render model a
widget of the given size would draw. A missing or unreadable snapshot shows
the empty state.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().String("size", config.SizeMedium, "widget size: small, medium or large")
	showCmd.Flags().Int("max", -1, "visible rows; overrides --size")
	showCmd.Flags().Bool("markdown", false, "render as markdown")
	showCmd.Flags().Bool("card", false, "render as a widget card")
	showCmd.Flags().Bool("fail-empty", false, "exit 1 after printing when no snapshot is available")
	showCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "rows":
			name = "max"
		case "widget":
			name = "size"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	maxItems, err := maxItemsFromFlags(cmd, e.cfg)
	if err != nil {
		return err
	}

	r, err := e.newReader()
	if err != nil {
		return err
	}
	m := r.Load(context.Background(), maxItems)

	if err := printWidget(cmd, m); err != nil {
		return err
	}
	if failEmpty, _ := cmd.Flags().GetBool("fail-empty"); failEmpty && m.Empty() {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func printWidget(cmd *cobra.Command, m reader.RenderModel) error {
	if md, _ := cmd.Flags().GetBool("markdown"); md {
		return output.Markdown(os.Stdout, output.WidgetMarkdown(m))
	}
	if card, _ := cmd.Flags().GetBool("card"); card {
		const width = 32
		output.Messagef(os.Stdout, "%s", output.WidgetCard(m, width))
		return nil
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, m)
	case output.FormatCompact:
		output.WidgetCompact(os.Stdout, m)
	default:
		output.WidgetTable(os.Stdout, m)
	}
	return nil
}

// maxItemsFromFlags resolves the row budget from --max or --size.
func maxItemsFromFlags(cmd *cobra.Command, cfg *config.Config) (int, error) {
	if cmd.Flags().Changed("max") {
		n, _ := cmd.Flags().GetInt("max")
		if n < 0 {
			return 0, clierr.Newf(clierr.InvalidInput, "--max must be >= 0, got %d", n)
		}
		return n, nil
	}
	size, _ := cmd.Flags().GetString("size")
	return cfg.MaxItems(size)
}
