package analyzer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/textmodel"
)

func TestMetricsRecordPassesAndPoolReuse(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics(prometheus.NewRegistry())

	strategy := StrategyFunc(func(
		_ context.Context,
		_ Env,
		content *textmodel.Content,
		b *textmodel.Builder,
		_ *Delegate,
	) error {
		for line := range content.LineCount() {
			b.Add(line, textmodel.Span{Column: 0, Style: textmodel.StyleKeyword})
		}
		return nil
	})

	engine, err := NewEngine(Language{Name: "metrics", Strategy: strategy},
		WithLogger(log.New(io.Discard)),
		WithMetrics(metrics),
		WithPoolSize(64),
	)
	require.NoError(t, err)
	defer engine.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, text := range []string{"a\nb\nc", "d\ne\nf", "g\nh\ni", "j\nk\nl"} {
		gen, err := engine.SubmitText(text)
		require.NoError(t, err)
		_, err = engine.WaitFor(ctx, gen)
		require.NoError(t, err)
		engine.Recycle()
	}

	assert.InDelta(t, 4, testutil.ToFloat64(metrics.submissions.WithLabelValues("metrics")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(metrics.passes.WithLabelValues("metrics", OutcomePublished)), 0)
	assert.Positive(t, testutil.ToFloat64(metrics.pool.WithLabelValues("metrics", "reused")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.duration))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.workers), 0)

	engine.Shutdown()
	<-engine.Done()
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.workers), 0)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.submitted("x")
	m.pass("x", OutcomeFailed, time.Second)
	m.poolDelta("x", textmodel.PoolStats{}, textmodel.PoolStats{Reused: 1})
	m.workerStarted()
	m.workerStopped()
}
