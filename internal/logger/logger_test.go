package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{in: "debug", want: DebugLevel},
		{in: "WARN", want: WarnLevel},
		{in: " error ", want: ErrorLevel},
		{in: "info", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "verbose", want: InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestConfigure_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	t.Cleanup(func() {
		Configure(Config{Level: InfoLevel, Pretty: true})
	})

	Debug().Msg("hidden")
	Info().Int64("recruitment_id", 7).Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["recruitment_id"])
}

func TestWith_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: DebugLevel, Output: &buf})
	t.Cleanup(func() {
		Configure(Config{Level: InfoLevel, Pretty: true})
	})

	child := With().Str("component", "sweep").Logger()
	child.Warn().Msg("skipped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "sweep", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}
