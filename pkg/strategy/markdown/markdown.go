// Package markdown provides an analysis strategy for Markdown: a line
// highlighter for spans plus a goldmark parse for fold blocks and the
// heading outline.
package markdown

import (
	"context"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Flavors supported by the block parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Strategy implements analyzer.Strategy for Markdown.
// It is safe for concurrent use by multiple engines.
type Strategy struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a Markdown strategy for the given flavor.
// Invalid flavors default to "commonmark".
func New(flavor string) *Strategy {
	f := flavorOrDefault(flavor)
	return &Strategy{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (s *Strategy) Flavor() string {
	return s.flavor
}

// Analyze styles every line, then parses the document for fold blocks and
// headings. It stops between lines once d says so.
func (s *Strategy) Analyze(
	_ context.Context,
	_ analyzer.Env,
	content *textmodel.Content,
	b *textmodel.Builder,
	d *analyzer.Delegate,
) error {
	h := newHighlighter(b)
	for line := range content.LineCount() {
		if !d.ShouldAnalyze() {
			return nil
		}
		h.highlightLine(line, content.Line(line))
	}

	if !d.ShouldAnalyze() {
		return nil
	}

	doc := s.md.Parser().Parse(text.NewReader(content.Bytes()), parser.WithContext(parser.NewContext()))

	if !d.ShouldAnalyze() {
		return nil
	}

	o := newOutline(content)
	o.collect(doc)

	for _, block := range o.blocks {
		b.AddBlock(block)
	}
	b.SetLabels(o.labels())

	return nil
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}
