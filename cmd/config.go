package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/config"
	"github.com/twiced-technology-gmbh/pawglance/internal/output"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get func(*config.Config) any
	set func(*config.Config, string) error // nil for read-only keys
}

// configKeys lists config keys in display order.
var configKeys = []string{
	"version",
	"channel",
	"display_name",
	"tasks_dir",
	"timezone",
	"refresh_interval",
	"store.backend",
	"store.dir",
	"widgets.small",
	"widgets.medium",
	"widgets.large",
	"log.level",
	"log.format",
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"channel": {
			get: func(c *config.Config) any { return c.Channel },
			set: func(c *config.Config, v string) error {
				if err := store.ValidateKey(v); err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid channel %q", v)
				}
				c.Channel = v
				return nil
			},
		},
		"display_name": {
			get: func(c *config.Config) any { return c.DisplayName },
			set: func(c *config.Config, v string) error { c.DisplayName = v; return nil },
		},
		"tasks_dir": {
			get: func(c *config.Config) any { return c.TasksDir },
			set: func(c *config.Config, v string) error { c.TasksDir = v; return nil },
		},
		"timezone": {
			get: func(c *config.Config) any { return c.Timezone },
			set: func(c *config.Config, v string) error {
				if _, err := time.LoadLocation(v); err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid timezone %q: %v", v, err)
				}
				c.Timezone = v
				return nil
			},
		},
		"refresh_interval": {
			get: func(c *config.Config) any { return c.RefreshInterval },
			set: func(c *config.Config, v string) error {
				if _, err := time.ParseDuration(v); err != nil {
					return clierr.Newf(clierr.InvalidInput, "invalid refresh_interval %q: %v", v, err)
				}
				c.RefreshInterval = v
				return nil
			},
		},
		"store.backend": {
			get: func(c *config.Config) any { return c.Store.Backend },
			set: func(c *config.Config, v string) error { c.Store.Backend = v; return nil },
		},
		"store.dir": {
			get: func(c *config.Config) any { return c.StorePath() },
			set: func(c *config.Config, v string) error { c.Store.Dir = v; return nil },
		},
		"widgets.small":  widgetAccessor(func(c *config.Config) *int { return &c.Widgets.Small }),
		"widgets.medium": widgetAccessor(func(c *config.Config) *int { return &c.Widgets.Medium }),
		"widgets.large":  widgetAccessor(func(c *config.Config) *int { return &c.Widgets.Large }),
		"log.level": {
			get: func(c *config.Config) any { return c.Log.Level },
			set: func(c *config.Config, v string) error { c.Log.Level = v; return nil },
		},
		"log.format": {
			get: func(c *config.Config) any { return c.Log.Format },
			set: func(c *config.Config, v string) error { c.Log.Format = v; return nil },
		},
	}
}

func widgetAccessor(field func(*config.Config) *int) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid row count %q: must be an integer", v)
			}
			*field(c) = n
			return nil // validation handles range check
		},
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range configKeys {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range configKeys {
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, formatConfigValue(accessors[key].get(cfg)))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	// Set against the file alone; flag and env overrides must not be saved.
	dir, err := resolveDir()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(dir)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if acc.set == nil {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	if s, ok := val.(string); ok && s == "" {
		return "--"
	}
	return fmt.Sprintf("%v", val)
}
