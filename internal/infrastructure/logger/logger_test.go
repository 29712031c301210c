package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/comfort/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("honors the level", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "warn", Format: "console", Output: "stdout"}, "development")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, err := New(config.LogConfig{Level: "chatty"}, "development")
		assert.Error(t, err)
	})

	t.Run("writes json to a file in production", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(config.LogConfig{Level: "info", Format: "console", Output: path}, "production")
		require.NoError(t, err)

		l.Info("sales order submitted")
		Sync(l)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"sales order submitted"`)
		assert.Contains(t, string(data), `"level":"info"`)
	})

	t.Run("fails when the file cannot be opened", func(t *testing.T) {
		_, err := New(config.LogConfig{Level: "info", Output: filepath.Join(t.TempDir(), "missing", "app.log")}, "development")
		assert.Error(t, err)
	})
}
