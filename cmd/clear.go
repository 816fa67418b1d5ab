package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored snapshot",
	Long: `Deletes the snapshot for the configured channel, the way a host clears its
shared store. Renderers show the empty state until the next publish.
Prompts for confirmation in interactive mode.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Clear snapshot for channel %q? [y/N] ", e.cfg.Channel)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if err := e.store.Delete(context.Background(), e.cfg.Channel); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "cleared",
			"channel": e.cfg.Channel,
		})
	}

	output.Messagef(os.Stdout, "Cleared snapshot for channel %s", e.cfg.Channel)
	return nil
}
