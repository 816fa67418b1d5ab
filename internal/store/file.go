package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/pawglance/internal/filelock"
)

const (
	fileMode   = 0o600
	dirMode    = 0o750
	valueExt   = ".json"
	lockExt    = ".lock"
	tempPrefix = ".tmp-"
)

// File stores each key as a file in a directory shared by the writer and
// every renderer process. Writes go to a temp file that is renamed over the
// target, so readers need no lock.
type File struct {
	dir string
}

// NewFile opens (and creates if needed) a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file store: dir is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, unavailable("creating store directory", err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *File) Dir() string { return s.dir }

// Path returns the file holding key's value.
func (s *File) Path(key string) string {
	return filepath.Join(s.dir, FileName(key))
}

// FileName returns the base name of the file holding key's value.
func FileName(key string) string {
	return key + valueExt
}

// Get implements Store.
func (s *File) Get(_ context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, unavailable("reading "+key, err)
	}
	return data, nil
}

// Put implements Store.
func (s *File) Put(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, key, func([]byte) ([]byte, error) { return value, nil })
}

// Update implements Store. The lock file serializes writers across
// processes; Get never takes it.
func (s *File) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	lock, err := filelock.Acquire(ctx, filepath.Join(s.dir, key+lockExt))
	if err != nil {
		return unavailable("locking "+key, err)
	}
	defer lock.Release()

	current, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.writeAtomic(key, next)
}

// Delete implements Store.
func (s *File) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return unavailable("deleting "+key, err)
	}
	return nil
}

// Close implements Store.
func (s *File) Close() error { return nil }

func (s *File) writeAtomic(key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, tempPrefix+key+"-*")
	if err != nil {
		return unavailable("creating temp file", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return unavailable("writing "+key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return unavailable("syncing "+key, err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("closing "+key, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return unavailable("chmod "+key, err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return unavailable(fmt.Sprintf("replacing %s", key), err)
	}
	committed = true
	return nil
}
