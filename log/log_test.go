package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		require.NoError(t, SetFormat("text"))
	})

	require.NoError(t, SetFormat("json"))
	WithFields(Fields{"survey": "feedback"}).Info("stored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "feedback", entry["survey"])
	assert.Equal(t, "stored", entry["msg"])
	assert.Equal(t, "info", entry["level"])

	assert.Error(t, SetFormat("xml"))
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(WarnLevel)
	t.Cleanup(func() { SetLevel(InfoLevel) })

	Info("hidden")
	Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
