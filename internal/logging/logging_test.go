package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blurtune.log")
	log, err := New(Config{Level: "debug", Format: "json", File: path, MaxSize: 1})
	require.NoError(t, err)

	log.Debug("generated placeholder", zap.String("image", "a.png"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"generated placeholder"`)
	assert.Contains(t, string(data), `"image":"a.png"`)
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blurtune.log")
	log, err := New(Config{Level: "warn", File: path, MaxSize: 1})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
