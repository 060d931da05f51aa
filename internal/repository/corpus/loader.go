// Package corpus reads the course description files that make up the
// knowledge base.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// DefaultExtension is the eligible file extension when none is configured.
const DefaultExtension = ".md"

// Loader reads every eligible file of one directory as a document.
type Loader struct {
	dir  string
	ext  string
	fsys fs.FS
}

// New creates a loader for dir. ext is matched case-insensitively and
// defaults to DefaultExtension.
func New(dir, ext string) *Loader {
	if ext == "" {
		ext = DefaultExtension
	}
	return &Loader{dir: dir, ext: ext, fsys: os.DirFS(dir)}
}

// Dir returns the corpus directory.
func (l *Loader) Dir() string { return l.dir }

// Eligible reports whether a file name belongs to the corpus.
func (l *Loader) Eligible(name string) bool {
	return strings.EqualFold(filepath.Ext(name), l.ext)
}

// Load returns one document per eligible file, ordered by file name.
// Subdirectories are not descended. An empty or missing directory yields
// domain.ErrEmptyCorpus.
func (l *Loader) Load(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrEmptyCorpus, l.dir, err)
	}

	var docs []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		if e.IsDir() || !l.Eligible(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(l.fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Join(l.dir, e.Name()), err)
		}
		docs = append(docs, string(data))
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", domain.ErrEmptyCorpus, l.ext, l.dir)
	}
	return docs, nil
}
