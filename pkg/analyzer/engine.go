package analyzer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// ReadyFunc is called after each published result.
type ReadyFunc func(e *Engine)

// workerSeq numbers workers across all engines in the process.
//
//nolint:gochecknoglobals // process-wide counter
var workerSeq atomic.Uint64

type failure struct {
	generation uint64
	err        error
}

// Engine analyzes submitted content in the background and publishes the
// newest complete result.
//
// All methods are safe for concurrent use. The ready callback runs on the
// worker goroutine; it must hand work off to its own goroutine if it needs to
// touch state owned elsewhere.
type Engine struct {
	lang       Language
	logger     *log.Logger
	metrics    *Metrics
	poolSize   int
	maxBlocks  int
	maxRetired int
	name       string

	latest   atomic.Pointer[textmodel.Result]
	failed   atomic.Pointer[failure]
	callback atomic.Pointer[ReadyFunc]
	restart  atomic.Bool
	state    atomic.Int32
	opStart  atomic.Int64

	// recycleBelow: retired results with a lower generation may be recycled.
	recycleBelow atomic.Uint64

	mu         sync.Mutex
	pending    *textmodel.Content
	pendingGen uint64
	generation uint64
	started    bool
	closed     bool

	readyMu sync.Mutex
	readyCh chan struct{}

	wake     chan struct{}
	ctx      context.Context //nolint:containedctx // worker lifetime
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine for lang. The worker goroutine starts with the
// first submission. Returns ErrNoStrategy if lang has no strategy.
func NewEngine(lang Language, opts ...Option) (*Engine, error) {
	if lang.Strategy == nil {
		return nil, ErrNoStrategy
	}

	if lang.Name == "" {
		lang.Name = "unknown"
	}

	ctx, cancel := context.WithCancel(context.Background())

	engine := &Engine{
		lang:       lang,
		logger:     log.Default(),
		poolSize:   defaultPoolSize(),
		maxRetired: defaultMaxRetired,
		name:       fmt.Sprintf("TextAnalyzeDaemon-%d", workerSeq.Add(1)),
		readyCh:    make(chan struct{}),
		wake:       make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	for _, opt := range opts {
		opt(engine)
	}

	engine.logger = engine.logger.With(
		logging.FieldWorker, engine.name,
		logging.FieldLanguage, lang.Name,
	)
	engine.latest.Store(textmodel.NewDefaultResult())
	engine.state.Store(int32(StateIdle))

	return engine, nil
}

// Name returns the worker name, "TextAnalyzeDaemon-N".
func (e *Engine) Name() string {
	return e.name
}

// Language returns the language the engine was built for.
func (e *Engine) Language() Language {
	return e.lang
}

// State returns the worker's current state.
func (e *Engine) State() WorkerState {
	return WorkerState(e.state.Load())
}

// Submit hands content to the worker and returns its generation. It never
// waits for analysis. A pass already running for older content is asked to
// stop; submissions that arrive faster than passes complete are coalesced so
// that only the newest is analyzed.
//
// After Shutdown, Submit returns ErrShutdown and the content is never analyzed.
func (e *Engine) Submit(content *textmodel.Content) (uint64, error) {
	if content == nil {
		return 0, ErrNilContent
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrShutdown
	}

	e.generation++
	gen := e.generation
	e.pending = content
	e.pendingGen = gen
	e.restart.Store(true)
	e.state.CompareAndSwap(int32(StateRunning), int32(StateRestartRequested))

	if !e.started {
		e.started = true
		w := newWorker(e)
		e.metrics.workerStarted()
		go w.run()
	}
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}

	e.metrics.submitted(e.lang.Name)

	return gen, nil
}

// SubmitText snapshots text and submits it.
func (e *Engine) SubmitText(text string) (uint64, error) {
	return e.Submit(textmodel.NewContentString(e.lang.File.Path, text))
}

// Generation returns the generation of the newest submission.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// LatestResult returns the newest published result. It is never nil: before
// the first publication it is a single line holding the default span.
func (e *Engine) LatestResult() *textmodel.Result {
	return e.latest.Load()
}

// OpStartTime returns when the most recent pass started, or the zero time.
func (e *Engine) OpStartTime() time.Time {
	ns := e.opStart.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// SetReadyCallback registers fn to be called after each publication,
// replacing any earlier callback. A nil fn removes it.
func (e *Engine) SetReadyCallback(fn ReadyFunc) {
	if fn == nil {
		e.callback.Store(nil)
		return
	}
	e.callback.Store(&fn)
}

// Recycle tells the engine that the caller no longer holds any result older
// than the current LatestResult. Their containers are reused by the next pass.
func (e *Engine) Recycle() {
	gen := e.latest.Load().Generation()
	for {
		cur := e.recycleBelow.Load()
		if gen <= cur || e.recycleBelow.CompareAndSwap(cur, gen) {
			return
		}
	}
}

// WaitFor blocks until a result for generation gen or newer is published.
// It returns ErrAnalysisFailed if the newest pass for gen or later failed,
// ErrShutdown if the engine stops first, or the context's error.
func (e *Engine) WaitFor(ctx context.Context, gen uint64) (*textmodel.Result, error) {
	for {
		ready := e.readySignal()

		if res := e.latest.Load(); res.Generation() >= gen {
			return res, nil
		}

		if f := e.failed.Load(); f != nil && f.generation >= gen && f.generation == e.Generation() {
			return nil, fmt.Errorf("%w: generation %d: %w", ErrAnalysisFailed, f.generation, f.err)
		}

		select {
		case <-ready:
		case <-e.done:
			if res := e.latest.Load(); res.Generation() >= gen {
				return res, nil
			}
			return nil, ErrShutdown
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Shutdown stops the worker. A running pass is told to stop and is not
// published. Shutdown is idempotent and does not wait; use Done to wait.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.pending = nil
		started := e.started
		e.mu.Unlock()

		e.cancel()

		if !started {
			e.state.Store(int32(StateTerminated))
			close(e.done)
		}
	})
}

// Done is closed once the worker has exited after Shutdown.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// take hands the pending content to the worker, or parks it when there is none.
func (e *Engine) take() (*textmodel.Content, uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.pending == nil {
		if !e.closed {
			e.state.Store(int32(StateParked))
		}
		return nil, 0, false
	}

	content := e.pending
	e.pending = nil
	e.restart.Store(false)
	e.state.Store(int32(StateRunning))

	return content, e.pendingGen, true
}

func (e *Engine) readySignal() <-chan struct{} {
	e.readyMu.Lock()
	defer e.readyMu.Unlock()
	return e.readyCh
}

// signalReady wakes WaitFor callers.
func (e *Engine) signalReady() {
	e.readyMu.Lock()
	close(e.readyCh)
	e.readyCh = make(chan struct{})
	e.readyMu.Unlock()
}

func (e *Engine) fireCallback() {
	fn := e.callback.Load()
	if fn == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("ready callback panicked", logging.FieldPanic, r)
		}
	}()

	(*fn)(e)
}
