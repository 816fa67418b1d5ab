// Package cmd implements the pawglance CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
	"github.com/twiced-technology-gmbh/pawglance/internal/metrics"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/reader"
	"github.com/twiced-technology-gmbh/pawglance/internal/snapshot"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
	"github.com/twiced-technology-gmbh/pawglance/internal/tasksource"
	"github.com/twiced-technology-gmbh/pawglance/internal/writer"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON     bool
	flagTable    bool
	flagCompact  bool
	flagDir      string
	flagNoColor  bool
	flagChannel  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pawglance",
	Short: "Publish and preview pet-care home-screen widgets",
	Long: `pawglance publishes a snapshot of today's pet-care tasks to a shared store
and derives the bounded widget view each renderer draws from it.
Run pawglance without a command to open the live widget preview.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runPreview,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to pawglance directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().StringVar(&flagChannel, "channel", "", "snapshot channel (store key); overrides config")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	cliErr := classify(err)

	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv(output.EnvFormat) == "json"
	}
	if jsonMode {
		output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
		os.Exit(cliErr.ExitCode())
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(cliErr.ExitCode())
}

// classify maps domain errors to structured CLI errors.
func classify(err error) *clierr.Error {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case errors.Is(err, config.ErrNotFound):
		return clierr.New(clierr.ConfigNotFound, err.Error())
	case errors.Is(err, config.ErrInvalid):
		return clierr.New(clierr.InvalidConfig, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		return clierr.New(clierr.StoreUnavailable, err.Error())
	case errors.Is(err, store.ErrInvalidKey):
		return clierr.New(clierr.InvalidInput, err.Error())
	case errors.Is(err, writer.ErrInvalidTask):
		return clierr.New(clierr.InvalidTask, err.Error())
	default:
		return clierr.New(clierr.InternalError, err.Error())
	}
}

// defaultHomeDir returns the path to ~/.config/pawglance.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pawglance"), nil
}

// resolveDir returns the absolute path to the pawglance directory.
// Falls back to ~/.config/pawglance if none is found in the current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	return defaultHomeDir()
}

// loadConfig finds and loads the config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if flagChannel != "" {
		if err := store.ValidateKey(flagChannel); err != nil {
			return nil, clierr.Newf(clierr.InvalidInput, "invalid --channel %q", flagChannel)
		}
		cfg.Channel = flagChannel
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidInput, "configuring logger: %v", err)
	}
	return logger, nil
}

// env bundles what most commands need: config, logger and an open store.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   store.Store
	metrics *metrics.Metrics
}

// openEnv loads config, builds the logger and opens the store. Callers must
// call close.
func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.StoreOptions(), logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, store: st}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing store", "error", err)
	}
}

func (e *env) newWriter() (*writer.Writer, error) {
	return writer.New(e.store, e.cfg.Channel,
		writer.WithLogger(e.logger),
		writer.WithMetrics(e.metrics),
		writer.WithDisplayName(e.cfg.DisplayName))
}

func (e *env) newReader() (*reader.Reader, error) {
	return reader.New(e.store, e.cfg.Channel,
		reader.WithLogger(e.logger),
		reader.WithMetrics(e.metrics),
		reader.WithDisplayLocation(e.cfg.Location()))
}

// readTasks reads the task source leniently, printing warnings for skipped files.
func readTasks(cfg *config.Config) ([]snapshot.Task, error) {
	tasks, warnings, err := tasksource.ReadAllLenient(cfg.TasksPath())
	if err != nil {
		return nil, err
	}
	printWarnings(warnings)
	return tasks, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// printWarnings writes task read warnings to stderr.
func printWarnings(warnings []tasksource.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping task file %s: %v\n", w.File, w.Err)
	}
}
