package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.MagicLinkTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.SessionTTL)
	assert.Equal(t, "log", cfg.Email.Provider)
	assert.Equal(t, int64(5<<20), cfg.Blob.MaxUploadSize)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
store:
  driver: sqlite
  sqlite:
    path: /tmp/kv.sqlite
jwt:
  magic_link_ttl: 10m
domains:
  public_domain: bio.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv("BIOLINK_JWT_SECRET", "from-env")
	t.Setenv("BIOLINK_ADMIN_MASTER_EMAIL", "root@example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/kv.sqlite", cfg.Store.SQLite.Path)
	assert.Equal(t, 10*time.Minute, cfg.JWT.MagicLinkTTL)
	assert.Equal(t, "bio.example.com", cfg.Domains.PublicDomain)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "root@example.com", cfg.Admin.MasterEmail)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
