package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelDebug, levelFromString("debug"))
	assert.Equal(t, slog.LevelInfo, levelFromString(""))
	assert.Equal(t, slog.LevelInfo, levelFromString("verbose"))
}

func TestNewWithWriterFormats(t *testing.T) {
	t.Parallel()

	var text bytes.Buffer
	NewWithWriter(&text, "info", "text").Info("record scored", "record_id", "rec1")
	assert.Contains(t, text.String(), "record_id=rec1")

	var js bytes.Buffer
	logger := NewWithWriter(&js, "warn", "json")
	logger.Info("dropped")
	logger.Warn("kept", "publisher", "NDTV")
	assert.NotContains(t, js.String(), "dropped")
	assert.Contains(t, js.String(), `"publisher":"NDTV"`)
}
