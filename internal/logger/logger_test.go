package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLogger("warn")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	// Invalid level falls back to info
	log = NewLogger("verbose")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestPipelineLoggerStepCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogStepCompleted("AAPL", "historical", 15, false, 120.5)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, "historical", entry["step"])
	assert.Equal(t, float64(15), entry["item_count"])
	assert.Equal(t, false, entry["cached"])
}

func TestPipelineLoggerStepFailed(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogStepFailed("MSFT", "news", errors.New("feed unavailable"))

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "MSFT", entry["symbol"])
	assert.Equal(t, "news", entry["step"])
	assert.Equal(t, "feed unavailable", entry["error"])
	assert.Equal(t, "error", entry["level"])
}

func TestPipelineLoggerBacktestSymbol(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	pipelineLogger.LogBacktestSymbol("GOOGL", true, 1.47, false)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, true, entry["success"])
	assert.Equal(t, 1.47, entry["pct_error"])
	assert.Equal(t, false, entry["direction_correct"])
}
