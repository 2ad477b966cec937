package analyzer

import (
	"errors"
	"runtime/debug"
	"time"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// worker is the single goroutine behind an Engine. It owns the pool, the
// builder and the list of retired results; nothing else touches them.
type worker struct {
	engine   *Engine
	pool     *textmodel.Pool
	builder  *textmodel.Builder
	delegate *Delegate

	// retired holds superseded results, oldest first, until Recycle allows
	// their containers back into the pool.
	retired []*textmodel.Result
}

func newWorker(e *Engine) *worker {
	pool := textmodel.NewPool(e.poolSize)

	return &worker{
		engine:   e,
		pool:     pool,
		builder:  textmodel.NewBuilder(pool),
		delegate: NewDelegate(e.ctx, &e.restart),
	}
}

func (w *worker) run() {
	e := w.engine

	e.logger.Debug("worker started")

	defer func() {
		e.state.Store(int32(StateTerminated))
		e.metrics.workerStopped()
		e.logger.Debug("worker stopped")
		close(e.done)
	}()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-e.wake:
		}

		for {
			content, gen, ok := e.take()
			if !ok {
				break
			}

			w.pass(content, gen)

			if e.ctx.Err() != nil {
				return
			}
		}
	}
}

// pass runs the strategy once. A pass that notices newer content, fails or
// is cancelled leaves the published result alone.
func (w *worker) pass(content *textmodel.Content, gen uint64) {
	e := w.engine
	start := time.Now()
	e.opStart.Store(start.UnixNano())

	w.recycleRetired()
	before := w.pool.Stats()
	defer func() {
		e.metrics.poolDelta(e.lang.Name, before, w.pool.Stats())
	}()

	b := w.builder
	b.SetMaxBlocks(e.maxBlocks)

	err := w.invoke(content, b)

	switch {
	case e.ctx.Err() != nil:
		b.Reset()
		e.metrics.pass(e.lang.Name, OutcomeCancelled, time.Since(start))
		return

	case e.restart.Load():
		b.Reset()
		e.metrics.pass(e.lang.Name, OutcomeSuperseded, time.Since(start))
		e.logger.Debug("pass superseded", logging.FieldGeneration, gen)
		return

	case err != nil:
		b.Reset()
		w.fail(gen, err)
		e.metrics.pass(e.lang.Name, OutcomeFailed, time.Since(start))
		return
	}

	b.Finish(content.LineCount())
	duration := time.Since(start)
	res := b.Build(textmodel.ResultMeta{
		Generation: gen,
		StartedAt:  start,
		Duration:   duration,
	})

	w.retire(e.latest.Swap(res))
	e.metrics.pass(e.lang.Name, OutcomePublished, duration)
	e.logger.Debug("result published",
		logging.FieldGeneration, gen,
		logging.FieldLines, res.LineCount(),
		logging.FieldBlocks, len(res.Blocks()),
		logging.FieldDuration, duration,
	)

	e.signalReady()
	e.fireCallback()
}

func (w *worker) invoke(content *textmodel.Content, b *textmodel.Builder) (err error) {
	e := w.engine

	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return e.lang.Strategy.Analyze(e.ctx, e.lang.env(), content, b, w.delegate)
}

func (w *worker) fail(gen uint64, err error) {
	e := w.engine

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		e.logger.Error("strategy panicked",
			logging.FieldGeneration, gen,
			logging.FieldPanic, panicErr.Value,
			"stack", string(panicErr.Stack),
		)
	} else {
		e.logger.Error("analysis failed",
			logging.FieldGeneration, gen,
			logging.FieldError, err,
		)
	}

	e.failed.Store(&failure{generation: gen, err: err})
	e.signalReady()
}

func (w *worker) retire(prev *textmodel.Result) {
	if prev == nil {
		return
	}

	w.retired = append(w.retired, prev)

	if excess := len(w.retired) - w.engine.maxRetired; excess > 0 {
		clear(w.retired[:excess])
		w.retired = w.retired[excess:]
	}
}

func (w *worker) recycleRetired() {
	below := w.engine.recycleBelow.Load()

	keep := w.retired[:0]
	for _, res := range w.retired {
		if res.Generation() < below {
			textmodel.Release(res, w.pool)
			continue
		}
		keep = append(keep, res)
	}

	clear(w.retired[len(keep):])
	w.retired = keep
}
