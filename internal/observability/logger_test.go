package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromContextDefaultsToNoop(t *testing.T) {
	require.Same(t, NoopLogger(), FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
}

func TestNewLoggerWritesRotatedFile(t *testing.T) {
	var buf bytes.Buffer
	prev := stdout
	stdout = func() io.Writer { return &buf }
	t.Cleanup(func() { stdout = prev })

	path := filepath.Join(t.TempDir(), "routine.log")
	logger, err := NewLogger(LoggerOptions{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("catalog loaded", zap.Int("products", 3))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &entry))
	require.Equal(t, "catalog loaded", entry["message"])
	require.Equal(t, "DEBUG", entry["severity"])
	require.EqualValues(t, 3, entry["products"])
	require.Contains(t, buf.String(), "catalog loaded")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := stdout
	stdout = func() io.Writer { return &buf }
	t.Cleanup(func() { stdout = prev })

	logger, err := NewLogger(LoggerOptions{Level: "chatty", Dev: true})
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
