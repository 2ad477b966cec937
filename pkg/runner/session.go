package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/yaklabco/textanalyzer/internal/logging"
	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/config"
	"github.com/yaklabco/textanalyzer/pkg/fsutil"
	"github.com/yaklabco/textanalyzer/pkg/langdetect"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// ErrSessionClosed is returned by Session methods after Close.
var ErrSessionClosed = errors.New("session closed")

// ReadyFunc receives every result a session publishes. It runs on the
// engine's worker goroutine and must not block for long.
type ReadyFunc func(path string, res *textmodel.Result)

// Session keeps one engine per file alive so that repeated edits are
// analyzed incrementally: each Update supersedes the pass still running for
// that file.
//
// With a ready callback, each publication recycles the results older than
// the one handed to the callback; a result obtained from Wait or Latest is
// then valid until the file's next publication.
type Session struct {
	runner  *Runner
	cfg     *config.Config
	onReady ReadyFunc

	mu      sync.Mutex
	engines map[string]*analyzer.Engine
	digests map[string]fsutil.Digest
	closed  bool
}

// NewSession creates a session. onReady may be nil.
func (r *Runner) NewSession(cfg *config.Config, onReady ReadyFunc) *Session {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Session{
		runner:  r,
		cfg:     cfg,
		onReady: onReady,
		engines: make(map[string]*analyzer.Engine),
		digests: make(map[string]fsutil.Digest),
	}
}

// Update reads path and submits its content, creating the file's engine on
// first use. It returns the submission generation. Binary files fail with
// ErrBinary.
func (s *Session) Update(ctx context.Context, path string) (uint64, error) {
	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return 0, err
	}
	return s.UpdateContent(path, data)
}

// UpdateContent submits data as the new content of path. Content identical
// to the previous submission is not analyzed again; the previous generation
// is returned.
func (s *Session) UpdateContent(path string, data []byte) (uint64, error) {
	if langdetect.IsBinary(data) {
		return 0, fmt.Errorf("%s: %w", path, ErrBinary)
	}

	digest := fsutil.Hash(data)

	engine, unchanged, err := s.engine(path, data, digest)
	if err != nil {
		return 0, err
	}

	if unchanged {
		gen := engine.Generation()
		s.runner.logger().Debug("content unchanged",
			logging.FieldPath, path,
			logging.FieldGeneration, gen,
		)
		return gen, nil
	}

	gen, err := engine.Submit(textmodel.NewContent(path, data))
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", path, err)
	}

	s.runner.logger().Debug("submitted",
		logging.FieldPath, path,
		logging.FieldGeneration, gen,
	)

	return gen, nil
}

// engine returns the engine for path, creating it on first use, and records
// digest as the path's latest content. unchanged reports that digest matched
// the previous submission.
func (s *Session) engine(path string, data []byte, digest fsutil.Digest) (*analyzer.Engine, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, ErrSessionClosed
	}
	if engine, ok := s.engines[path]; ok {
		if prev, seen := s.digests[path]; seen && prev == digest {
			return engine, true, nil
		}
		s.digests[path] = digest
		return engine, false, nil
	}

	lang, err := s.runner.Registry.Resolve(path, data)
	if err != nil {
		return nil, false, fmt.Errorf("resolve language for %s: %w", path, err)
	}

	engine, err := analyzer.NewEngine(lang, s.runner.EngineOptions(s.cfg)...)
	if err != nil {
		return nil, false, err
	}

	if s.onReady != nil {
		onReady := s.onReady
		engine.SetReadyCallback(func(e *analyzer.Engine) {
			onReady(path, e.LatestResult())
			// The callback is the only reader; older results are unreferenced.
			e.Recycle()
		})
	}

	s.engines[path] = engine
	s.digests[path] = digest

	return engine, false, nil
}

// Wait blocks until path has a result for gen or newer.
func (s *Session) Wait(ctx context.Context, path string, gen uint64) (*textmodel.Result, error) {
	s.mu.Lock()
	engine, ok := s.engines[path]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}

	return engine.WaitFor(ctx, gen)
}

// Latest returns the newest result for path, if the session tracks it.
func (s *Session) Latest(path string) (*textmodel.Result, bool) {
	s.mu.Lock()
	engine, ok := s.engines[path]
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	return engine.LatestResult(), true
}

// Remove stops tracking path and shuts its engine down.
func (s *Session) Remove(path string) {
	s.mu.Lock()
	engine, ok := s.engines[path]
	delete(s.engines, path)
	delete(s.digests, path)
	s.mu.Unlock()

	if ok {
		engine.Shutdown()
	}
}

// Paths returns the tracked paths in sorted order.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.engines))
	for path := range s.engines {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Close shuts every engine down and waits for their workers to exit or ctx
// to end.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	engines := make([]*analyzer.Engine, 0, len(s.engines))
	for _, engine := range s.engines {
		engines = append(engines, engine)
	}
	clear(s.engines)
	clear(s.digests)
	s.mu.Unlock()

	for _, engine := range engines {
		engine.Shutdown()
	}

	for _, engine := range engines {
		select {
		case <-engine.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
