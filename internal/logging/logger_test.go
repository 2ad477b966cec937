package logging_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/textanalyzer/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"DEBUG", log.DebugLevel},
		{" Info ", log.InfoLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, logging.ParseLevel(tt.level))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", logging.FieldWorker, "TextAnalyzeDaemon-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "worker=TextAnalyzeDaemon-1") {
		t.Errorf("expected worker field in output: %q", out)
	}
}

func TestDefaultAndSetLevel(t *testing.T) {
	// Not parallel: modifies the process-wide logger.
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New(io.Discard, "info"))

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())

	logging.SetLevel("error")
	assert.Equal(t, log.ErrorLevel, logging.Default().GetLevel())

	logging.SetDefault(nil)
	assert.NotNil(t, logging.Default(), "nil does not replace the default")
}

func TestNewInteractive(t *testing.T) {
	// Not parallel: reads the process-wide level.
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New(io.Discard, "debug"))

	var buf bytes.Buffer
	logger := logging.NewInteractive(&buf)
	assert.Equal(t, log.DebugLevel, logger.GetLevel(), "level follows the default logger")

	logger.Info("watching")
	assert.Contains(t, buf.String(), "textanalyzer")
	assert.Contains(t, buf.String(), "watching")
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	logger := logging.New(io.Discard, "debug")
	ctx := logging.WithLogger(context.Background(), logger)

	assert.Same(t, logger, logging.FromContext(ctx))
	assert.NotNil(t, logging.FromContext(context.Background()), "falls back to the default")

	//nolint:staticcheck // nil context is tolerated
	assert.NotNil(t, logging.FromContext(nil))
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(&buf, "info"))
	ctx = logging.WithFields(ctx, logging.FieldPath, "README.md")

	logging.FromContext(ctx).Info("analyzed")

	assert.Contains(t, buf.String(), "path=README.md")
}
