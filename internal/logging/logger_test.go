package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantTrace bool
		wantDebug bool
		wantInfo  bool
	}{
		{level: "trace", wantTrace: true, wantDebug: true, wantInfo: true},
		{level: "debug", wantTrace: false, wantDebug: true, wantInfo: true},
		{level: "info", wantTrace: false, wantDebug: false, wantInfo: true},
		{level: "error", wantTrace: false, wantDebug: false, wantInfo: false},
		{level: "bogus", wantTrace: false, wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tt.level, Output: &buf})

			logger.Trace().Msg("trace message")
			logger.Debug().Msg("debug message")
			logger.Info().Msg("info message")

			out := buf.String()
			assert.Equal(t, tt.wantTrace, bytes.Contains([]byte(out), []byte("trace message")))
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("debug message")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("info message")))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNewWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{Level: "info", Output: &buf}, "storage")
	logger.Info().Msg("opened")

	assert.Contains(t, buf.String(), `"component":"storage"`)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Output: &buf})
	logger := Component(base, "mcp")
	logger.Info().Msg("tool call")

	assert.Contains(t, buf.String(), `"component":"mcp"`)
}
