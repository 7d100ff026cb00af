package logutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("loaded checkpoint", "path", "model.fcnt")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"loaded checkpoint\"")
	assert.Contains(t, out, "path=model.fcnt")
	assert.NotContains(t, out, "source=")
}

func TestNewLoggerDebugSource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelDebug).Debug("transition")

	out := buf.String()
	assert.Contains(t, out, "msg=transition")
	assert.Contains(t, out, "source=logutil_test.go:")
}
