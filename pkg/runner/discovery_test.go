package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/runner"
)

// writeTree creates files (relative slash paths) under dir.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

// relAll converts discovered paths back to slash paths relative to dir.
func relAll(t *testing.T, dir string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			t.Fatalf("filepath.Rel: %v", err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"server.log": "started\n"})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"server.log"},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	// Explicit files are kept even when no language claims the extension.
	require.Len(t, discovered, 1)
	assert.True(t, filepath.IsAbs(discovered[0]))
	assert.Equal(t, "server.log", filepath.Base(discovered[0]))
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"main.go":        "package main\n",
		"README.md":      "# Readme\n",
		"data.json":      "{}\n",
		"logo.png":       "\x89PNG",
		"sub/notes.txt":  "notes\n",
		"sub/run.sh":     "echo hi\n",
		"sub/deep/a.py":  "x = 1\n",
		"sub/deep/b.bin": "\x00\x01",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"README.md",
		"data.json",
		"main.go",
		"sub/deep/a.py",
		"sub/notes.txt",
		"sub/run.sh",
	}, relAll(t, dir, discovered))
}

func TestDiscover_CustomExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.go":     "package a\n",
		"b.GO":     "package b\n",
		"c.md":     "# c\n",
		"d/e.json": "{}",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
		Extensions: []string{".go"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.go", "b.GO"}, relAll(t, dir, discovered))
}

func TestDiscover_ExcludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.md":           "x",
		"build/out.md":      "x",
		"docs/guide.md":     "x",
		"docs/scratch.txt":  "x",
		"docs/api/index.md": "x",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:        []string{"."},
		WorkingDir:   dir,
		ExcludeGlobs: []string{"build/**", "*.txt", "**/api"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/guide.md", "keep.md"}, relAll(t, dir, discovered))
}

func TestDiscover_IncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"root.md":         "x",
		"docs/a.md":       "x",
		"docs/nested/b.md": "x",
		"src/c.md":        "x",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:        []string{"."},
		WorkingDir:   dir,
		IncludeGlobs: []string{"docs/**"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/a.md", "docs/nested/b.md"}, relAll(t, dir, discovered))
}

func TestDiscover_Vendored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"app.js":                    "console.log(1)\n",
		"node_modules/lib/index.js": "module.exports = 1\n",
	})

	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	discovered, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, relAll(t, dir, discovered))

	opts.IncludeVendored = true
	discovered, err = runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js", "node_modules/lib/index.js"}, relAll(t, dir, discovered))
}

func TestDiscover_HiddenFilesAndDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"readme.md":       "content",
		".hidden.md":      "content",
		".git/config.md":  "content",
		"docs/.secret.md": "content",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"readme.md"}, relAll(t, dir, discovered))
}

func TestDiscover_DeterministicOrdering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"z.md": "", "a.go": "", "m.txt": "", "b.py": ""})

	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	first, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.IsIncreasing(t, first)

	for range 5 {
		again, err := runner.Discover(context.Background(), opts)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDiscover_Deduplication(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"readme.md": "# Test"})

	files, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"readme.md", "./readme.md", ".", "readme.md"},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	if len(files) != 1 {
		t.Fatalf("expected 1 file (deduplicated), got %d: %v", len(files), files)
	}
}

func TestDiscover_MultiplePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"docs/readme.md":   "content",
		"guides/readme.md": "content",
		"notes/readme.md":  "content",
	})

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"guides", "docs"},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/readme.md", "guides/readme.md"}, relAll(t, dir, discovered))
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"nonexistent"},
		WorkingDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.md": "", "b.md": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Discover(ctx, runner.Options{Paths: []string{"."}, WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real.md": "content"})

	if err := os.Symlink(filepath.Join(dir, "real.md"), filepath.Join(dir, "link.md")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	discovered, err := runner.Discover(context.Background(), runner.Options{
		Paths:      []string{"."},
		WorkingDir: dir,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"link.md", "real.md"}, relAll(t, dir, discovered))
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real/doc.md": "content"})

	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"linked.md": "outside"})

	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	opts := runner.Options{Paths: []string{"."}, WorkingDir: dir}

	discovered, err := runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, discovered, 1)
	assert.True(t, strings.HasSuffix(discovered[0], "doc.md"))

	opts.FollowSymlinks = true
	discovered, err = runner.Discover(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, discovered, 2)

	var bases []string
	for _, f := range discovered {
		bases = append(bases, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"doc.md", "linked.md"}, bases)
}

func TestDefaultExtensions(t *testing.T) {
	t.Parallel()

	exts := runner.DefaultExtensions()

	for _, want := range []string{".md", ".markdown", ".go", ".py", ".js", ".json", ".sh", ".txt"} {
		assert.Contains(t, exts, want)
	}
	assert.NotContains(t, exts, ".png")
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := runner.NewMatcher(runner.Options{
		WorkingDir:   dir,
		ExcludeGlobs: []string{"build/**"},
	})
	require.NoError(t, err)

	tests := []struct {
		rel  string
		want bool
	}{
		{rel: "main.go", want: true},
		{rel: "docs/guide.md", want: true},
		{rel: "notes.log", want: false},
		{rel: ".hidden.md", want: false},
		{rel: ".git/config.md", want: false},
		{rel: "build/out.go", want: false},
		{rel: "node_modules/lib/index.js", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Match(filepath.Join(dir, filepath.FromSlash(tt.rel))))
		})
	}
}
