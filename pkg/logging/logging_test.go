package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	l.Info().Int("seconds", 5).Msg("Time remaining")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Time remaining", entry["message"])
	assert.EqualValues(t, 5, entry["seconds"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("error", FormatJSON, &buf)
	require.NoError(t, err)

	l.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", FormatJSON, nil)
	require.Error(t, err)

	_, err = New("info", "xml", nil)
	require.Error(t, err)
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	Success(&l).Msg("User logged in")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "success", entry["outcome"])
}

func TestTemporalLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := New("debug", FormatJSON, &buf)
	require.NoError(t, err)

	tl := NewTemporalLogger(l).With("workflow", "TrialResetWorkflow")
	tl.Warn("Check failed", "error", "boom")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "TrialResetWorkflow", entry["workflow"])
	assert.Equal(t, "boom", entry["error"])
}
