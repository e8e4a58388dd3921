package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Run("unknown level falls back to warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger("", "text", &buf)

		logger.Info("hidden")
		assert.Empty(t, buf.String())

		logger.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("debug level passes debug records", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger("debug", "text", &buf).Debug("trace")
		assert.Contains(t, buf.String(), "trace")
	})

	t.Run("json format emits json", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger("info", "json", &buf).Info("event")
		assert.Contains(t, buf.String(), `"msg":"event"`)
	})
}
