// internal/logger/logger_test.go
package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthline/commerce-api/internal/config"
)

func TestConfigureFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "app.log")

	log := logrus.New()
	require.NoError(t, Configure(log, config.LogConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	}))

	Component(log, "products").Debug("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "products", entry["component"])
	assert.Equal(t, serviceName, entry["service"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestConfigureUnknownLevelFallsBackToInfo(t *testing.T) {
	log := logrus.New()
	require.NoError(t, Configure(log, config.LogConfig{Level: "chatty", Format: "text", Output: "stdout"}))
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
