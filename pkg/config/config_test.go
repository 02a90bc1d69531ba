package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "opaque", cfg.Auth.TokenBackend)
	assert.Equal(t, "gridfs", cfg.Storage.Backend)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9000"
env = "production"

[auth]
token_backend = "jwt"
jwt_secret = "from-file"
token_ttl_hours = 12

[storage]
backend = "s3"

[storage.s3]
bucket = "recipes"
region = "eu-west-1"
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "jwt", cfg.Auth.TokenBackend)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, "recipes", cfg.Storage.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.TokenBackend = "jwt"
	assert.Error(t, cfg.Validate(), "jwt without secret")

	cfg = Default()
	cfg.Storage.Backend = "s3"
	assert.Error(t, cfg.Validate(), "s3 without bucket")

	cfg = Default()
	cfg.Storage.Backend = "ftp"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "[server\nport ="))
	_, err := Load()
	assert.Error(t, err)
}
