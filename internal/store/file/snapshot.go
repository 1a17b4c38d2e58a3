// Package file keeps the catalog snapshot in a local directory, for the
// CLI where no Redis is around.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	snapshotFile  = "catalog.json"
	timestampFile = "catalog.timestamp"
)

// Store reads and writes the two snapshot files under Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// LoadSnapshot returns the cached catalog. A missing file is a miss.
func (s *Store) LoadSnapshot(_ context.Context) ([]byte, time.Time, bool, error) {
	data, err := os.ReadFile(s.path(snapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}

	raw, err := os.ReadFile(s.path(timestampFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read snapshot timestamp: %w", err)
	}

	var savedAt time.Time
	if ms, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64); err == nil {
		savedAt = time.UnixMilli(ms)
	}
	return data, savedAt, true, nil
}

// SaveSnapshot writes the catalog first and the timestamp last, each
// through a rename so readers never see half a file.
func (s *Store) SaveSnapshot(_ context.Context, data []byte, savedAt time.Time) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	if err := writeAtomic(s.path(snapshotFile), data); err != nil {
		return err
	}
	return writeAtomic(s.path(timestampFile), []byte(strconv.FormatInt(savedAt.UnixMilli(), 10)))
}

// ClearSnapshot removes both files. Missing files are fine.
func (s *Store) ClearSnapshot(_ context.Context) error {
	for _, name := range []string{timestampFile, snapshotFile} {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear catalog snapshot: %w", err)
		}
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
