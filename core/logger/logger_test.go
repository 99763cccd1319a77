package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/core/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("production writes json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithProduction("qrstudio"), logger.WithOutput(&buf))
		log.Debug("hidden")
		log.Info("exported", logger.Dimension(300))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "exported", rec["msg"])
		assert.Equal(t, "qrstudio", rec["service"])
		assert.Equal(t, "production", rec["env"])
		assert.InDelta(t, 300, rec["dimension"], 0)
	})

	t.Run("development writes debug text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("qrstudio"), logger.WithOutput(&buf))
		log.Debug("render", logger.Component("studio"))

		assert.Contains(t, buf.String(), "msg=render")
		assert.Contains(t, buf.String(), "component=studio")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("level override", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("x"), logger.WithLevel(slog.LevelWarn), logger.WithOutput(&buf))
		log.Info("quiet")
		assert.Empty(t, buf.String())
	})

	t.Run("context values", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", key{}),
		).With(logger.Component("web"))

		ctx := context.WithValue(context.Background(), key{}, "req-1")
		log.InfoContext(ctx, "hit")
		log.Info("no context value")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)

		var first, second map[string]any
		require.NoError(t, json.Unmarshal(lines[0], &first))
		require.NoError(t, json.Unmarshal(lines[1], &second))
		assert.Equal(t, "req-1", first["request_id"])
		assert.Equal(t, "web", first["component"])
		assert.NotContains(t, second, "request_id")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, logger.ParseLevel(in), "input %q", in)
	}
}
