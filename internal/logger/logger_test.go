package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ClaraBenejam/PAWSture/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	l := New(config.LoggingConfig{Level: "info", Format: "json"})
	assert.NotNil(t, l)
	l.Info("hello", "key", "value")
}

func TestNew_TextFormat(t *testing.T) {
	l := New(config.LoggingConfig{Level: "debug", Format: "text"})
	assert.NotNil(t, l)
	l.Debug("hello", "key", "value")
}

func TestWith_AddsFields(t *testing.T) {
	l := New(config.LoggingConfig{Level: "info", Format: "json"})
	scoped := l.With("user_id", "42")
	assert.NotNil(t, scoped)
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	SetDefault(New(config.LoggingConfig{Level: "warn", Format: "json"}))
	Info("should still work without panicking")
	Warn("warn level message")
	Error("error level message")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, -4, int(parseLevel("debug")))
	assert.Equal(t, 0, int(parseLevel("info")))
	assert.Equal(t, 4, int(parseLevel("warn")))
	assert.Equal(t, 8, int(parseLevel("error")))
	assert.Equal(t, 0, int(parseLevel("unknown")))
}
