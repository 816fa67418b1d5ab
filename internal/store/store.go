// Package store provides the shared key/value area that bridges the
// publishing application and its widget renderers.
//
// Every backend guarantees that a single Put or Update is atomic: readers
// observe either the previous value or the new one, never a partial write.
// There is no versioning beyond what callers embed in the value.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
)

// Sentinel errors.
var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("store unavailable")
	ErrInvalidKey  = errors.New("invalid store key")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

const maxKeyLength = 128

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// UpdateFunc computes the next value for a key from its current value.
// current is nil when the key is absent. Returning an error aborts the
// update and leaves the stored value untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a durable key/value area with last-writer-wins semantics.
type Store interface {
	// Get returns the stored value, or ErrNotFound if the key was never
	// written or has been cleared.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put atomically replaces the value under key.
	Put(ctx context.Context, key string, value []byte) error

	// Update atomically reads, transforms and replaces the value under key.
	// Concurrent updates of the same key are serialized.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string
}

// Open returns the backend named by cfg.Backend. An empty backend means file.
func Open(cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	switch cfg.Backend {
	case "", BackendFile:
		return NewFile(cfg.Dir)
	case BackendBadger:
		return NewBadger(cfg.Dir, logger)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// ValidateKey checks that key is usable by every backend, including as a
// file name.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > maxKeyLength || !keyRe.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// unavailable wraps a backend failure so callers can match ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
