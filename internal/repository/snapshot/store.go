// Package snapshot persists the (documents, vectors) pair behind the knowledge
// index so a restart can skip re-embedding the corpus.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Store reads and writes one snapshot file.
type Store struct {
	path string
}

// New creates a snapshot store for path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Persist replaces the snapshot atomically: the data goes to a temp file in
// the same directory, is fsynced and then renamed over the target.
func (s *Store) Persist(documents []string, vectors [][]float32) error {
	data, err := Encode(documents, vectors)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// Load reads the snapshot. A missing file is domain.ErrSnapshotNotFound,
// anything unreadable is domain.ErrSnapshotCorrupt.
func (s *Store) Load() ([]string, [][]float32, error) {
	data, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, s.path)
		}
		return nil, nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	documents, vectors, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return documents, vectors, nil
}

// syncDir flushes the directory entry of the rename. Best effort: not every
// platform supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(filepath.Clean(dir))
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
