package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/watcher"
)

const waitFor = 5 * time.Second

type collector struct {
	mu     sync.Mutex
	events []watcher.Event
}

func (c *collector) handle(ev watcher.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) snapshot() []watcher.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}

func (c *collector) has(ev watcher.Event) bool {
	return slices.Contains(c.snapshot(), ev)
}

func (c *collector) hasPath(path string) bool {
	return slices.ContainsFunc(c.snapshot(), func(ev watcher.Event) bool { return ev.Path == path })
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func startWatcher(t *testing.T, opts watcher.Options, paths ...string) (*watcher.Watcher, *collector) {
	t.Helper()

	w := watcher.New(opts)
	for _, p := range paths {
		require.NoError(t, w.Add(p))
	}

	c := &collector{}
	require.NoError(t, w.Start(context.Background(), c.handle))
	t.Cleanup(func() { _ = w.Close() })

	return w, c
}

func pollOptions() watcher.Options {
	return watcher.Options{
		Poll:         true,
		PollInterval: 20 * time.Millisecond,
		Debounce:     10 * time.Millisecond,
	}
}

func TestOpString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "change", watcher.OpChange.String())
	assert.Equal(t, "remove", watcher.OpRemove.String())
	assert.Equal(t, "Op(9)", watcher.Op(9).String())
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts := watcher.OptionsFromConfig(config.WatchConfig{
		Debounce:     time.Second,
		Poll:         true,
		PollInterval: 3 * time.Second,
	})

	assert.Equal(t, time.Second, opts.Debounce)
	assert.True(t, opts.Poll)
	assert.Equal(t, 3*time.Second, opts.PollInterval)
}

func TestSessionID(t *testing.T) {
	t.Parallel()

	a := watcher.New(watcher.Options{})
	b := watcher.New(watcher.Options{})

	_, err := uuid.Parse(a.SessionID())
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}

func TestAdd_Missing(t *testing.T) {
	t.Parallel()

	w := watcher.New(watcher.Options{})
	err := w.Add(filepath.Join(t.TempDir(), "missing.md"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestStart_Twice(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, pollOptions(), t.TempDir())

	err := w.Start(context.Background(), func(watcher.Event) {})
	require.ErrorIs(t, err, watcher.ErrAlreadyRunning)
}

func TestClose(t *testing.T) {
	t.Parallel()

	w, _ := startWatcher(t, pollOptions(), t.TempDir())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case <-w.Done():
	default:
		t.Fatal("Done not closed after Close")
	}

	require.ErrorIs(t, w.Add(t.TempDir()), watcher.ErrClosed)
	require.ErrorIs(t, w.Start(context.Background(), func(watcher.Event) {}), watcher.ErrClosed)
}

func TestContextCancelStops(t *testing.T) {
	t.Parallel()

	w := watcher.New(pollOptions())
	require.NoError(t, w.Add(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx, func(watcher.Event) {}))
	cancel()

	select {
	case <-w.Done():
	case <-time.After(waitFor):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestPolling(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "doc.md")
	writeFile(t, existing, "# Title\n")

	w, c := startWatcher(t, pollOptions(), dir)
	assert.True(t, w.Polling())

	writeFile(t, existing, "# Title\n\nMore text.\n")
	assert.Eventually(t, func() bool {
		return c.has(watcher.Event{Path: existing, Op: watcher.OpChange})
	}, waitFor, 10*time.Millisecond)

	created := filepath.Join(dir, "sub", "new.go")
	writeFile(t, created, "package sub\n")
	assert.Eventually(t, func() bool {
		return c.has(watcher.Event{Path: created, Op: watcher.OpChange})
	}, waitFor, 10*time.Millisecond)

	require.NoError(t, os.Remove(existing))
	assert.Eventually(t, func() bool {
		return c.has(watcher.Event{Path: existing, Op: watcher.OpRemove})
	}, waitFor, 10*time.Millisecond)
}

func TestPolling_NoEventsForUnchangedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.md"), "# Title\n")

	_, c := startWatcher(t, pollOptions(), dir)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, c.snapshot())
}

func TestFilterAndHidden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts watcher.Options
	}{
		{name: "polling", opts: pollOptions()},
		{name: "fsnotify", opts: watcher.Options{Debounce: 10 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o750))

			opts := tt.opts
			opts.Filter = func(path string) bool { return strings.HasSuffix(path, ".md") }
			_, c := startWatcher(t, opts, dir)

			ignoredExt := filepath.Join(dir, "notes.txt")
			ignoredHidden := filepath.Join(dir, ".git", "HEAD.md")
			wanted := filepath.Join(dir, "README.md")

			writeFile(t, ignoredExt, "text\n")
			writeFile(t, ignoredHidden, "ref\n")
			writeFile(t, wanted, "# Readme\n")

			assert.Eventually(t, func() bool { return c.hasPath(wanted) }, waitFor, 10*time.Millisecond)

			time.Sleep(100 * time.Millisecond)
			assert.False(t, c.hasPath(ignoredExt))
			assert.False(t, c.hasPath(ignoredHidden))
		})
	}
}

func TestNotify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	writeFile(t, file, "package main\n")

	w, c := startWatcher(t, watcher.Options{Debounce: 10 * time.Millisecond}, dir)
	assert.False(t, w.Polling())

	writeFile(t, file, "package main\n\nfunc main() {}\n")
	assert.Eventually(t, func() bool {
		return c.has(watcher.Event{Path: file, Op: watcher.OpChange})
	}, waitFor, 10*time.Millisecond)

	nested := filepath.Join(dir, "pkg", "lib.go")
	writeFile(t, nested, "package pkg\n")
	assert.Eventually(t, func() bool { return c.hasPath(nested) }, waitFor, 10*time.Millisecond)

	require.NoError(t, os.Remove(file))
	assert.Eventually(t, func() bool {
		return c.has(watcher.Event{Path: file, Op: watcher.OpRemove})
	}, waitFor, 10*time.Millisecond)
}

func TestExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "target.md")
	sibling := filepath.Join(dir, "sibling.md")
	writeFile(t, target, "a\n")
	writeFile(t, sibling, "b\n")

	_, c := startWatcher(t, watcher.Options{Debounce: 10 * time.Millisecond}, target)

	writeFile(t, sibling, "bb\n")
	writeFile(t, target, "aa\n")

	assert.Eventually(t, func() bool { return c.hasPath(target) }, waitFor, 10*time.Millisecond)
	assert.False(t, c.hasPath(sibling))
}
