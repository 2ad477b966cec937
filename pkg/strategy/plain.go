package strategy

import (
	"context"

	"github.com/yaklabco/textanalyzer/pkg/analyzer"
	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

// Plain returns a strategy that styles nothing. Every line ends up with the
// default span once the engine finishes the pass.
func Plain() analyzer.Strategy {
	return analyzer.StrategyFunc(func(
		_ context.Context,
		_ analyzer.Env,
		content *textmodel.Content,
		b *textmodel.Builder,
		d *analyzer.Delegate,
	) error {
		if d.ShouldAnalyze() {
			b.Determine(content.LineCount() - 1)
		}
		return nil
	})
}
