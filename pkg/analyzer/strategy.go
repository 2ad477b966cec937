// Package analyzer runs a pluggable analysis strategy in the background each
// time the text changes and publishes the newest complete result.
//
// An Engine owns one worker goroutine. Submitting new content while a pass is
// running asks that pass to stop; the worker then starts over with the latest
// content. Only passes that finish without being superseded are published, so
// readers always see either the previous result or a newer complete one.
package analyzer

import (
	"context"
	"sync/atomic"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Strategy turns text into spans, fold blocks and labels.
//
// The analyzer package defines this interface to follow the principle of
// defining interfaces in the consumer package. Implementations (e.g.,
// strategy/markdown, strategy/treesitter) provide the per-language logic.
//
// Implementations must:
//   - write only to the builder they are given,
//   - poll d.ShouldAnalyze() between lines or tokens and return promptly once
//     it reports false (returning early is not an error),
//   - not retain the builder or the content after returning.
//
// A returned error or a panic abandons the pass; the engine keeps the
// previously published result.
type Strategy interface {
	// Analyze fills b from content.
	//
	// Parameters:
	//   - ctx: cancelled when the engine shuts down.
	//   - env: language server handle and file context.
	//   - content: immutable text snapshot.
	//   - b: private builder for this pass.
	//   - d: continuation check, false once the pass should stop.
	Analyze(ctx context.Context, env Env, content *textmodel.Content, b *textmodel.Builder, d *Delegate) error
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, env Env, content *textmodel.Content, b *textmodel.Builder, d *Delegate) error

// Analyze calls f.
func (f StrategyFunc) Analyze(
	ctx context.Context,
	env Env,
	content *textmodel.Content,
	b *textmodel.Builder,
	d *Delegate,
) error {
	return f(ctx, env, content, b, d)
}

// LanguageServer is a handle to an external language server that strategies
// may query. The engine only passes it through.
type LanguageServer interface {
	// ServerID identifies the server in logs.
	ServerID() string
}

// FileContext describes the file being analyzed.
type FileContext struct {
	// Path is the file path; may be empty for unsaved buffers.
	Path string

	// LanguageID is the resolved language name (e.g. "markdown", "go").
	LanguageID string
}

// Env is handed to every Analyze call.
type Env struct {
	Server LanguageServer
	File   FileContext
}

// Language bundles a strategy with what the engine hands to it.
type Language struct {
	// Name identifies the language in logs and metrics.
	Name string

	// Strategy is required.
	Strategy Strategy

	// Server is optional.
	Server LanguageServer

	// File is passed through to the strategy.
	File FileContext
}

func (l Language) env() Env {
	return Env{Server: l.Server, File: l.File}
}

// Delegate tells a running strategy whether to keep going. It turns false
// once newer content has been submitted or the engine is shutting down.
type Delegate struct {
	ctx     context.Context //nolint:containedctx // checked on every poll
	restart *atomic.Bool
}

// NewDelegate creates a delegate backed by restart and ctx. Either may be nil.
func NewDelegate(ctx context.Context, restart *atomic.Bool) *Delegate {
	return &Delegate{ctx: ctx, restart: restart}
}

// ShouldAnalyze reports whether the current pass is still wanted.
func (d *Delegate) ShouldAnalyze() bool {
	if d == nil {
		return true
	}
	if d.restart != nil && d.restart.Load() {
		return false
	}
	return d.ctx == nil || d.ctx.Err() == nil
}
