package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v3"

	"github.com/twiced-technology-gmbh/pawglance/internal/logging"
)

// Badger keeps snapshots in an embedded Badger database. Badger holds an
// exclusive directory lock, so writer and renderers must share one process
// (the daemon or the preview).
type Badger struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadger opens a Badger database in dir.
func NewBadger(dir string, logger *slog.Logger) (*Badger, error) {
	if dir == "" {
		return nil, errors.New("badger store: dir is required")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.SyncWrites = true
	// Values are a few kilobytes; the defaults are sized for large datasets.
	opts.MemTableSize = 8 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.NumVersionsToKeep = 1

	db, err := badger.Open(opts)
	if err != nil {
		return nil, unavailable("opening badger", err)
	}

	logger.Debug("badger store opened", "dir", dir)
	return &Badger{db: db, logger: logger}, nil
}

// Get implements Store.
func (s *Badger) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("reading "+key, err)
	}
	return value, nil
}

// Put implements Store.
func (s *Badger) Put(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return unavailable("writing "+key, err)
	}
	return nil
}

// Update implements Store. The read and the write share one transaction;
// a conflicting concurrent update is retried.
func (s *Badger) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	for {
		var fnErr error
		err := s.db.Update(func(txn *badger.Txn) error {
			var current []byte
			item, err := txn.Get([]byte(key))
			switch {
			case err == nil:
				if current, err = item.ValueCopy(nil); err != nil {
					return err
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			next, err := fn(current)
			if err != nil {
				fnErr = err
				return err
			}
			return txn.Set([]byte(key), next)
		})
		if fnErr != nil {
			return fnErr
		}
		if errors.Is(err, badger.ErrConflict) {
			if ctx.Err() != nil {
				return unavailable("updating "+key, ctx.Err())
			}
			s.logger.Debug("badger update conflict, retrying", "key", key)
			continue
		}
		if err != nil {
			return unavailable("updating "+key, err)
		}
		return nil
	}
}

// Delete implements Store.
func (s *Badger) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return unavailable("deleting "+key, err)
	}
	return nil
}

// Close implements Store.
func (s *Badger) Close() error {
	return s.db.Close()
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Badger is chatty at info level; its startup messages go to debug.
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
