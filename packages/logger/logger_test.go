package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, LevelFor(0))
	assert.Equal(t, zapcore.InfoLevel, LevelFor(1))
	assert.Equal(t, zapcore.DebugLevel, LevelFor(2))
	assert.Equal(t, zapcore.DebugLevel, LevelFor(5))
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: 1, NoColor: true, Output: &buf})

	log.Debug("hidden")
	log.Info("macro executed", zap.String("request", "login"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "macro executed")
	assert.Contains(t, out, `"request": "login"`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbosity: 2, Format: "json", Output: &buf})

	log.Debug("cache hit", zap.String("key", "abc"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "cache hit", entry["msg"])
	assert.Equal(t, "abc", entry["key"])
}

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	log.Info("quiet")
	assert.Empty(t, buf.String())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
