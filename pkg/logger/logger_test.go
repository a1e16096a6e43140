package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/biograph/pkg/logger"
)

func TestColorHandlerWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("retrieval complete", "entities", 3)

	out := buf.String()
	assert.Contains(t, out, "retrieval complete")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "entities=")
	assert.Contains(t, out, "3")
}

func TestColorHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewColorHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestColorHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewColorHandler(&buf, nil)
	log := slog.New(base).With("component", "store")

	log.Info("evicted conversation")

	assert.Contains(t, buf.String(), "component=")
	assert.Contains(t, buf.String(), "store")
}
