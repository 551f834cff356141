package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("production drops debug and tags every line", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, "production")
		log.Debug("hidden")
		log.Info("session started", "tier", "basic")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "session started", line["msg"])
		assert.Equal(t, "precheck", line["service"])
		assert.Equal(t, "production", line["environment"])
		assert.Equal(t, "basic", line["tier"])
	})

	t.Run("development logs debug", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter(&buf, "development").Debug("visible")
		assert.Contains(t, buf.String(), "visible")
	})
}
