package config

import (
	"os"
	"path/filepath"
	"testing"

	"pwsi/core/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.Prefix)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Enrich.Steam.Enabled)
	assert.Equal(t, 2.0, cfg.Enrich.MAL.RPS)
	assert.Equal(t, 14, cfg.Backup.Keep)
	assert.Equal(t, 30, cfg.Site.CounterDelaySeconds)
	assert.Empty(t, cfg.Secrets.URL)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "SERVER_PORT=9090\nDATABASE_DRIVER=sqlite\nENRICH_MAL_CLIENT_ID=abc\nSITE_STREAMER=someone\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"SERVER_PORT", "DATABASE_DRIVER", "ENRICH_MAL_CLIENT_ID", "SITE_STREAMER"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "abc", cfg.Enrich.MAL.ClientID)
	assert.Equal(t, "someone", cfg.Site.Streamer)
}

func TestOverlay(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Enrich.MAL.Header = "X-MAL-CLIENT-ID"
	cfg.Site.Streamer = "local"

	cfg.Overlay(&secrets.Secrets{
		Database: &secrets.Database{Host: "db.internal", Port: 6432, Password: "pw"},
		MAL:      &secrets.MAL{ClientID: "id"},
		APIKey:   "token",
	})

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "X-MAL-CLIENT-ID", cfg.Enrich.MAL.Header)
	assert.Equal(t, "id", cfg.Enrich.MAL.ClientID)
	assert.Equal(t, "local", cfg.Site.Streamer)
	assert.Equal(t, "token", cfg.Server.ApiKey)

	assert.NotPanics(t, func() { cfg.Overlay(nil) })
}
