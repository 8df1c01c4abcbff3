package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := WithComponent(New("production", WithOutput(&buf), WithLevel("warn")), "invoices")

	log.Info().Msg("dropped")
	log.Warn().Str("number", "RE-2026-001").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "invoices", entry["component"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "RE-2026-001", entry["number"])
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", WithOutput(&buf), WithLevel("loud"))

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}
