package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/pawglance/internal/clierr"
	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
	"github.com/twiced-technology-gmbh/pawglance/internal/schedule"
	"github.com/twiced-technology-gmbh/pawglance/internal/store"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no pawglance directory found (run 'pawglance init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config is one pawglance channel: where tasks come from, where snapshots go
// and how renderers present them.
type Config struct {
	Version         int           `yaml:"version" koanf:"version"`
	Channel         string        `yaml:"channel" koanf:"channel"`
	DisplayName     string        `yaml:"display_name,omitempty" koanf:"display_name"`
	TasksDir        string        `yaml:"tasks_dir" koanf:"tasks_dir"`
	Timezone        string        `yaml:"timezone,omitempty" koanf:"timezone"`
	RefreshInterval string        `yaml:"refresh_interval" koanf:"refresh_interval"`
	Store           StoreConfig   `yaml:"store" koanf:"store"`
	Widgets         WidgetsConfig `yaml:"widgets" koanf:"widgets"`
	Log             LogConfig     `yaml:"log" koanf:"log"`

	// dir is the absolute path to the pawglance directory (not serialized).
	dir string `yaml:"-"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" koanf:"backend"`
	Dir     string `yaml:"dir,omitempty" koanf:"dir"`
}

// WidgetsConfig holds the visible row count for each renderer size.
type WidgetsConfig struct {
	Small  int `yaml:"small" koanf:"small" json:"small"`
	Medium int `yaml:"medium" koanf:"medium" json:"medium"`
	Large  int `yaml:"large" koanf:"large" json:"large"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// Widget sizes.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Sizes lists the widget sizes from smallest to largest.
var Sizes = []string{SizeSmall, SizeMedium, SizeLarge}

// Dir returns the absolute path to the pawglance directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the pawglance directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TasksPath returns the absolute path to the task source directory.
func (c *Config) TasksPath() string {
	return c.resolve(c.TasksDir)
}

// StorePath returns the absolute path to the snapshot store directory.
func (c *Config) StorePath() string {
	if c.Store.Dir == "" {
		return filepath.Join(c.dir, DefaultStoreDir)
	}
	return c.resolve(c.Store.Dir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// StoreOptions returns the store settings with the directory resolved.
func (c *Config) StoreOptions() store.Config {
	return store.Config{Backend: c.Store.Backend, Dir: c.StorePath()}
}

// LoggingConfig returns the logging settings.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// Location returns the display and rollover time zone. Empty means local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// RefreshIntervalDuration parses refresh_interval. Unset or unparseable
// values yield the scheduler minimum.
func (c *Config) RefreshIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return schedule.MinInterval
	}
	return d
}

// Policy returns the refresh policy for this channel.
func (c *Config) Policy() schedule.Policy {
	return schedule.NewPolicy(c.RefreshIntervalDuration(), c.Location())
}

// MaxItems returns the visible row count for a widget size.
func (c *Config) MaxItems(size string) (int, error) {
	switch size {
	case SizeSmall:
		return c.Widgets.Small, nil
	case SizeMedium:
		return c.Widgets.Medium, nil
	case SizeLarge:
		return c.Widgets.Large, nil
	default:
		return 0, clierr.Newf(clierr.InvalidInput,
			"invalid widget size %q; allowed: %s", size, strings.Join(Sizes, ", "))
	}
}

// NewDefault creates a Config with default values.
func NewDefault(displayName string) *Config {
	return &Config{
		Version:         CurrentVersion,
		Channel:         DefaultChannel,
		DisplayName:     displayName,
		TasksDir:        DefaultTasksDir,
		RefreshInterval: DefaultRefreshInterval,
		Store:           StoreConfig{Backend: DefaultStoreBackend},
		Widgets:         DefaultWidgets,
		Log:             DefaultLog,
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if err := store.ValidateKey(c.Channel); err != nil {
		return fmt.Errorf("%w: channel: %w", ErrInvalid, err)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("%w: invalid timezone %q: %w", ErrInvalid, c.Timezone, err)
		}
	}
	if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
		return fmt.Errorf("%w: invalid refresh_interval %q: %w", ErrInvalid, c.RefreshInterval, err)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendBadger, store.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}
	if c.Widgets.Small < 0 || c.Widgets.Medium < 0 || c.Widgets.Large < 0 {
		return fmt.Errorf("%w: widgets row counts must be >= 0", ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	if c.Log.Format != logging.FormatText && c.Log.Format != logging.FormatJSON {
		return fmt.Errorf("%w: log.format must be %q or %q", ErrInvalid, logging.FormatText, logging.FormatJSON)
	}
	return nil
}

// Init creates a new pawglance directory with default settings: the config
// file, the task source directory and the store directory.
func Init(dir, displayName string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(displayName)
	cfg.SetDir(absDir)

	for _, p := range []string{cfg.TasksPath(), cfg.StorePath()} {
		if err := os.MkdirAll(p, dirMode); err != nil {
			return nil, fmt.Errorf("creating %s: %w", p, err)
		}
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads, migrates and validates the config in dir. Environment
// variables prefixed with EnvPrefix override file values; "__" separates
// nested keys (PAWGLANCE_STORE__BACKEND=badger).
func Load(dir string) (*Config, error) {
	path, absDir, err := locate(dir)
	if err != nil {
		return nil, err
	}
	if err := migrateFile(path, absDir); err != nil {
		return nil, err
	}

	cfg, err := decode(path, true)
	if err != nil {
		return nil, err
	}
	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and migrates the config in dir without environment
// overrides. Use it when the result will be saved back.
func LoadFile(dir string) (*Config, error) {
	path, absDir, err := locate(dir)
	if err != nil {
		return nil, err
	}
	if err := migrateFile(path, absDir); err != nil {
		return nil, err
	}

	cfg, err := decode(path, false)
	if err != nil {
		return nil, err
	}
	cfg.dir = absDir
	return cfg, nil
}

func locate(dir string) (path, absDir string, err error) {
	absDir, err = filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("resolving path: %w", err)
	}

	path = filepath.Join(absDir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", "", ErrNotFound
		}
		return "", "", fmt.Errorf("reading config: %w", err)
	}
	return path, absDir, nil
}

// migrateFile upgrades the file in place. It decodes the file alone so
// environment overrides are never persisted.
func migrateFile(path, absDir string) error {
	cfg, err := decode(path, false)
	if err != nil {
		return err
	}
	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(cfg); err != nil {
		return err
	}
	if cfg.Version == oldVersion {
		return nil
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving migrated config: %w", err)
	}
	return nil
}

func decode(path string, withEnv bool) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// envKey maps PAWGLANCE_STORE__BACKEND to store.backend.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// FindDir walks upward from startDir looking for a pawglance directory
// containing config.yml. Returns the absolute path to the pawglance directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the pawglance directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ConfigNotFound, ErrNotFound.Error())
		}
		dir = parent
	}
}
