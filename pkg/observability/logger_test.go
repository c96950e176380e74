package observability

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"framecore/pkg/config"
)

func TestGetLoggerBeforeInitializeIsNop(t *testing.T) {
	ResetForTest()
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestInitializeJSON(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "debug", Format: "json", ServiceName: "test"}, zapcore.AddSync(&buf))
	GetLogger().Named("frame").Debug("lifecycle advanced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "test.frame", entry["logger"])
	assert.Equal(t, "lifecycle advanced", entry["msg"])
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))
	GetLogger().Info("hello")

	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestConsoleFormatColorsLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	cfg := config.LoggerConfig{Level: "warn", Format: "console", Colors: config.ColorConfig{Warn: "yellow"}}
	Initialize(cfg, zapcore.AddSync(&buf))
	GetLogger().Info("filtered")
	GetLogger().Warn("loop limit")

	out := buf.String()
	assert.NotContains(t, out, "filtered")
	assert.Contains(t, out, "\x1b[33mWARN\x1b[0m")
}

func TestInitializeWithLogFile(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "framecore.log")
	Initialize(config.LoggerConfig{Level: "info", Format: "json", LogFile: path, MaxSize: 1}, zapcore.AddSync(&buf))
	GetLogger().Info("to both")
	Sync()
	assert.FileExists(t, path)
}
