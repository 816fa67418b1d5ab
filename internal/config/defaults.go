// Package config handles pawglance channel configuration.
package config

const (
	// DefaultDir is the default pawglance directory name.
	DefaultDir = ".pawglance"
	// DefaultTasksDir is the default task source subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultStoreDir is the default snapshot store subdirectory name.
	DefaultStoreDir = "store"
	// DefaultChannel is the store key used when none is configured.
	DefaultChannel = "default"
	// DefaultRefreshInterval is the renderer refresh cadence.
	DefaultRefreshInterval = "15m"
	// DefaultStoreBackend selects the file-per-key store.
	DefaultStoreBackend = "file"

	// ConfigFileName is the name of the config file within the pawglance directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// EnvPrefix prefixes environment overrides, e.g. PAWGLANCE_STORE__BACKEND.
	EnvPrefix = "PAWGLANCE_"
)

// DefaultWidgets holds the visible row counts per renderer size.
var DefaultWidgets = WidgetsConfig{Small: 0, Medium: 3, Large: 6}

// DefaultLog is the logging setup for new directories.
var DefaultLog = LogConfig{Level: "info", Format: "text"}
