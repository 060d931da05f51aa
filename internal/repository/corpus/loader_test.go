package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
}

func TestLoad_OrderedByName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"data_science.md":  "# Data Science",
		"ai_automation.md": "# AI Automation",
		"generative_ai.md": "# Generative AI",
	})

	docs, err := New(dir, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"# AI Automation", "# Data Science", "# Generative AI"}, docs)
}

func TestLoad_FiltersAndSkipsSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.md":          "a",
		"B.MD":          "b",
		"notes.txt":     "skip",
		"nested/c.md":   "skip",
		"README":        "skip",
		"archive.md.gz": "skip",
	})

	docs, err := New(dir, ".md").Load(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, docs)
	assert.Len(t, docs, 2)
}

func TestLoad_KeepsContentVerbatim(t *testing.T) {
	dir := t.TempDir()
	body := "  # Agentic AI\n\nAgents, tools.\n\n"
	writeFiles(t, dir, map[string]string{"agentic.md": body})

	docs, err := New(dir, "").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{body}, docs)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"notes.txt": "x"})

	_, err := New(dir, "").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), "").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.md": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(dir, "").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEligible(t *testing.T) {
	l := New(t.TempDir(), ".md")
	assert.True(t, l.Eligible("x.md"))
	assert.True(t, l.Eligible("X.Md"))
	assert.False(t, l.Eligible("x.markdown"))
	assert.False(t, l.Eligible(".md.swp"))
}
