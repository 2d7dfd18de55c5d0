package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"unknown defaults to info", "unknown", zerolog.InfoLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			New(Config{Level: tt.level})
			assert.Equal(t, tt.expected, zerolog.GlobalLevel())
		})
	}
}

func TestNew_WritesStructuredOutput(t *testing.T) {
	logger := New(Config{Level: "info"})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Info().Str("key", "value").Msg("test message")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, `"key":"value"`)
}

func TestNew_LevelFiltering(t *testing.T) {
	logger := New(Config{Level: "error"})

	var buf bytes.Buffer
	logger = logger.Output(&buf)

	logger.Info().Msg("filtered out")
	assert.NotContains(t, buf.String(), "filtered out")

	logger.Error().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_TimestampFormat(t *testing.T) {
	New(Config{Level: "info"})

	assert.Equal(t, "2006-01-02T15:04:05Z07:00", zerolog.TimeFieldFormat)
}

func TestNew_PrettyOutput(t *testing.T) {
	logger := New(Config{Level: "info", Pretty: true})

	var buf bytes.Buffer
	logger = logger.Output(&buf)
	logger.Info().Msg("pretty message")

	assert.Contains(t, buf.String(), "pretty message")
}

func TestSetGlobalLogger(t *testing.T) {
	logger := New(Config{Level: "info"})

	var buf bytes.Buffer
	SetGlobalLogger(logger.Output(&buf))

	log.Info().Msg("global test")
	assert.Contains(t, buf.String(), "global test")
}
