// Package watcher reports debounced file changes under a set of paths, using
// fsnotify when available and stat polling otherwise.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/config"
)

// Watcher errors.
var (
	ErrClosed         = errors.New("watcher closed")
	ErrAlreadyRunning = errors.New("watcher already running")
)

// Op describes what happened to a file.
type Op uint8

// Operations.
const (
	OpChange Op = iota + 1
	OpRemove
)

func (op Op) String() string {
	switch op {
	case OpChange:
		return "change"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Event is a settled change to one file.
type Event struct {
	Path string
	Op   Op
}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long a file must stay quiet before its event fires.
	Debounce time.Duration

	// Poll forces stat polling instead of fsnotify.
	Poll bool

	// PollInterval is the polling period.
	PollInterval time.Duration

	// Filter selects the files under watched directories that produce events.
	// Files added explicitly always do. Nil accepts every non-hidden file.
	Filter func(path string) bool

	// Logger defaults to logging.Default().
	Logger *log.Logger
}

// OptionsFromConfig maps the watch configuration onto Options.
func OptionsFromConfig(cfg config.WatchConfig) Options {
	return Options{
		Debounce:     cfg.Debounce,
		Poll:         cfg.Poll,
		PollInterval: cfg.PollInterval,
	}
}

type fileState struct {
	modTime time.Time
	size    int64
}

// Watcher watches files and directory trees.
type Watcher struct {
	opts    Options
	session string
	logger  *log.Logger

	mu      sync.Mutex
	files   map[string]bool
	roots   []string
	state   map[string]fileState
	fsw     *fsnotify.Watcher
	polling bool
	running bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	debouncer *Debouncer
}

// New creates a watcher. Every watcher gets a fresh session id that tags its
// log lines.
func New(opts Options) *Watcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	session := uuid.NewString()

	return &Watcher{
		opts:    opts,
		session: session,
		logger:  logger.With(logging.FieldSession, session),
		files:   make(map[string]bool),
		state:   make(map[string]fileState),
		done:    make(chan struct{}),
	}
}

// SessionID returns the id attached to this watcher's log lines.
func (w *Watcher) SessionID() string {
	return w.session
}

// Polling reports whether the watcher fell back to, or was forced into, stat
// polling. It is meaningful after Start.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Add watches a file, or a directory tree. Files already present are
// recorded without producing events.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	if info.IsDir() {
		if slices.Contains(w.roots, abs) {
			return nil
		}
		w.roots = append(w.roots, abs)
	} else {
		w.files[abs] = true
	}

	w.snapshotLocked(abs, w.state)

	if w.fsw != nil {
		return w.addWatchesLocked(abs, info.IsDir())
	}
	return nil
}

// Start begins delivering events to handle from a background goroutine.
// handle is never called concurrently with itself for the same path.
// Watching stops when ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context, handle func(Event)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return ErrClosed
	case w.running:
		return ErrAlreadyRunning
	}

	w.debouncer = NewDebouncer(w.opts.Debounce, func(ev Event) {
		w.logger.Debug("file event", logging.FieldPath, ev.Path, logging.FieldOp, ev.Op.String())
		handle(ev)
	})

	w.polling = w.opts.Poll
	if !w.polling {
		if err := w.startNotifyLocked(); err != nil {
			w.logger.Warn("fsnotify unavailable, polling instead", logging.FieldError, err)
			w.polling = true
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.running = true

	w.logger.Info("watching",
		logging.FieldPaths, len(w.roots)+len(w.files),
		logging.FieldPolling, w.polling,
	)

	if w.polling {
		go w.pollLoop(ctx)
	} else {
		go w.notifyLoop(ctx, w.fsw)
	}

	return nil
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Close stops watching and waits for the event loop to exit. Pending events
// are dropped. Close is idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	if running {
		<-w.done
	}
	return nil
}

func (w *Watcher) startNotifyLocked() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w.fsw = fsw

	for file := range w.files {
		if err := w.addWatchesLocked(file, false); err != nil {
			return w.abandonNotifyLocked(err)
		}
	}
	for _, root := range w.roots {
		if err := w.addWatchesLocked(root, true); err != nil {
			return w.abandonNotifyLocked(err)
		}
	}
	return nil
}

func (w *Watcher) abandonNotifyLocked(err error) error {
	_ = w.fsw.Close()
	w.fsw = nil
	return err
}

// addWatchesLocked registers the parent of a file, or every visible
// directory of a tree.
func (w *Watcher) addWatchesLocked(path string, isDir bool) error {
	if !isDir {
		return w.addWatchLocked(filepath.Dir(path))
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable directories are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.addWatchLocked(p)
	})
}

func (w *Watcher) addWatchLocked(dir string) error {
	if slices.Contains(w.fsw.WatchList(), dir) {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

func (w *Watcher) notifyLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.finish()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleNotify(ev)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.FieldError, err)
		}
	}
}

func (w *Watcher) handleNotify(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addCreatedDir(path)
			return
		}
	}

	if !w.relevant(path) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.debouncer.Trigger(Event{Path: path, Op: OpRemove})
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		w.debouncer.Trigger(Event{Path: path, Op: OpChange})
	}
}

// addCreatedDir watches a directory that appeared under a root and reports
// the files it already holds.
func (w *Watcher) addCreatedDir(dir string) {
	w.mu.Lock()
	if w.fsw == nil || !w.underRootLocked(dir) || hiddenBelow(w.rootOfLocked(dir), dir) {
		w.mu.Unlock()
		return
	}
	err := w.addWatchesLocked(dir, true)
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("watch error", logging.FieldPath, dir, logging.FieldError, err)
		return
	}

	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr // best effort
		}
		if w.relevant(p) {
			w.debouncer.Trigger(Event{Path: p, Op: OpChange})
		}
		return nil
	})
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.finish()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll compares a fresh snapshot against the previous one.
func (w *Watcher) poll() {
	w.mu.Lock()
	next := make(map[string]fileState, len(w.state))
	for file := range w.files {
		w.snapshotLocked(file, next)
	}
	for _, root := range w.roots {
		w.snapshotLocked(root, next)
	}
	prev := w.state
	w.state = next
	w.mu.Unlock()

	for path, st := range next {
		if old, ok := prev[path]; !ok || !old.modTime.Equal(st.modTime) || old.size != st.size {
			w.debouncer.Trigger(Event{Path: path, Op: OpChange})
		}
	}
	for path := range prev {
		if _, ok := next[path]; !ok {
			w.debouncer.Trigger(Event{Path: path, Op: OpRemove})
		}
	}
}

// snapshotLocked records the state of the relevant files at path.
func (w *Watcher) snapshotLocked(path string, into map[string]fileState) {
	if w.files[path] {
		if info, err := os.Stat(path); err == nil {
			into[path] = fileState{modTime: info.ModTime(), size: info.Size()}
		}
		return
	}

	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // vanished or unreadable entries are skipped
		}
		if p != path && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !w.selected(p) {
			return nil
		}
		if info, err := d.Info(); err == nil {
			into[p] = fileState{modTime: info.ModTime(), size: info.Size()}
		}
		return nil
	})
}

func (w *Watcher) relevant(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[path] {
		return true
	}
	root := w.rootOfLocked(path)
	if root == "" || hiddenBelow(root, path) {
		return false
	}
	return w.selected(path)
}

func (w *Watcher) selected(path string) bool {
	return w.opts.Filter == nil || w.opts.Filter(path)
}

func (w *Watcher) underRootLocked(path string) bool {
	return w.rootOfLocked(path) != ""
}

func (w *Watcher) rootOfLocked(path string) string {
	for _, root := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return root
		}
	}
	return ""
}

func (w *Watcher) finish() {
	w.mu.Lock()
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	w.debouncer.Stop()
	w.closed = true
	w.mu.Unlock()

	w.logger.Debug("watch stopped")
	close(w.done)
}

func hidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// hiddenBelow reports whether any element of path below root is hidden.
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	return slices.ContainsFunc(strings.Split(rel, string(filepath.Separator)), hidden)
}
