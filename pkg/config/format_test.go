package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textanalyzer/pkg/config"
)

func TestParseOutputFormat(t *testing.T) {
	for _, f := range config.Formats() {
		got, err := config.ParseOutputFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := config.ParseOutputFormat("sarif")
	require.ErrorIs(t, err, config.ErrInvalidFormat)
}

func TestColorMode(t *testing.T) {
	tests := []struct {
		mode     config.ColorMode
		terminal bool
		want     bool
	}{
		{config.ColorAlways, false, true},
		{config.ColorNever, true, false},
		{config.ColorAuto, true, true},
		{config.ColorAuto, false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.True(t, tt.mode.IsValid())
			assert.Equal(t, tt.want, tt.mode.Enabled(tt.terminal))
		})
	}

	assert.False(t, config.ColorMode("sometimes").IsValid())
}
