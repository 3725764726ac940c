package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blurtune.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 256, cfg.Server.MaxSessions)
	assert.Equal(t, "dir", cfg.Catalog.Backend)
	assert.Equal(t, "./images", cfg.Catalog.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Log.MaxSize)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  write_timeout: 5s
catalog:
  backend: minio
  minio:
    endpoint: localhost:9000
    bucket: images
encoder:
  cwebp_path: /opt/bin/cwebp
log:
  level: debug
`)
	cfg, err := Load(NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "minio", cfg.Catalog.Backend)
	assert.Equal(t, "images", cfg.Catalog.Minio.Bucket)
	assert.Equal(t, "/opt/bin/cwebp", cfg.Encoder.CwebpPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BLURTUNE_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("BLURTUNE_CATALOG_WORKERS", "3")

	cfg, err := Load(NewViper(""))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Catalog.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"backend":       "catalog:\n  backend: s3\n",
		"minio section": "catalog:\n  backend: minio\n",
		"log level":     "log:\n  level: loud\n",
		"sessions":      "server:\n  max_sessions: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(NewViper(writeConfig(t, body)))
			assert.ErrorIs(t, err, apperr.InvalidConfiguration)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.ErrorIs(t, err, apperr.InvalidConfiguration)
}
