package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}

	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Level(42).String())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	log := With(NewLogger(Config{Level: LevelInfo, Format: "json", Output: &buf}), "request_id", "r-1")
	log.Debug("hidden")
	log.Info("tree built", "nodes", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tree built", entry["msg"])
	assert.Equal(t, "r-1", entry["request_id"])
	assert.InDelta(t, 3, entry["nodes"], 0)
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer

	log := NewLogger(Config{Level: LevelWarn, Output: &buf})
	log.Info("hidden")
	log.Warn("no match", "path", "$.x")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "path=$.x")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNop(t *testing.T) {
	assert.Equal(t, Nop(), OrNop(nil))
	assert.Equal(t, Nop(), With(Nop(), "k", "v"))

	Nop().Error("discarded")
}
