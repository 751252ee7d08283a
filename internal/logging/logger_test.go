package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medclimate/backend/internal/config"
)

func TestNew_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, &config.Config{Env: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "medclimate")

	logger.Info("record stored", "id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "record stored", line["msg"])
	assert.Equal(t, "medclimate", line["app"])
	assert.Equal(t, "1.2.3", line["version"])
	assert.Equal(t, "prod", line["env"])
	assert.EqualValues(t, 7, line["id"])
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, &config.Config{Env: "prod", LogLevel: slog.LevelWarn}, "dev", "medclimate")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_DevUsesConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, &config.Config{Env: "dev", LogLevel: slog.LevelDebug}, "dev", "medclimate")

	logger.Debug("schema ensured")
	out := buf.String()
	assert.Contains(t, out, "schema ensured")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
