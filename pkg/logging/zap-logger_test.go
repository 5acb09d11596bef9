package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	ctx := WithContextFields(context.Background(), zap.String("cycle", "1"))
	ctx = WithContextFields(ctx, zap.String("provider", "p1"))
	logger.InfoCtx(ctx, "checked", zap.Int("orders", 3))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "checked", entry.Message)
	assert.Equal(t, map[string]any{
		"cycle":    "1",
		"provider": "p1",
		"orders":   int64(3),
	}, entry.ContextMap())
}

func TestContextFieldsDoNotLeakToParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	parent := WithContextFields(context.Background(), zap.String("cycle", "1"))
	_ = WithContextFields(parent, zap.String("provider", "p1"))
	logger.WarnCtx(parent, "parent only")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, map[string]any{"cycle": "1"}, logs.All()[0].ContextMap())
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := Wrap(zap.New(core))
	ctx := context.Background()

	logger.DebugCtx(ctx, "dropped")
	logger.InfoCtx(ctx, "info")
	logger.WarnCtx(ctx, "warn")
	logger.ErrorCtx(ctx, "error")

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
}

func TestNewZapLoggerWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.log")

	logger, err := NewZapLogger(zapcore.InfoLevel, WithFile(path), WithOutputPaths(filepath.Join(dir, "stdout.log")))
	require.NoError(t, err)

	logger.InfoCtx(context.Background(), "to file")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"to file"`)
}
