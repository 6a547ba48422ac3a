package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupStderrOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := setup(&buf, "", slog.LevelInfo)
	require.NoError(t, err)
	defer cleanup()

	logger.Debug("hidden")
	logger.Info("scanned", "files", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "scanned", rec["msg"])
	assert.Equal(t, float64(3), rec["files"])
}

func TestSetupWritesFile(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "codejump.log")

	logger, cleanup, err := setup(&buf, logFile, slog.LevelDebug)
	require.NoError(t, err)
	logger.Debug("hello")
	cleanup()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
	assert.True(t, strings.Contains(string(data), `"msg":"hello"`))
}
