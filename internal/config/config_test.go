package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "GIN_MODE", "DATABASE_URL", "REFERENCE_SOURCE", "REFERENCE_PATH", "CATALOG_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package directory out of the picture.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, SourceEmbedded, cfg.Reference.Source)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Reference.Source = SourceCSV
	cfg.Reference.Path = "/data/fertilizer.csv"
	cfg.Log.Level = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, loaded.Reference.Source)
	assert.Equal(t, "/data/fertilizer.csv", loaded.Reference.Path)
	assert.Equal(t, "debug", loaded.Log.Level)
	assert.Equal(t, "8000", loaded.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REFERENCE_SOURCE", SourcePostgres)
	t.Setenv("DATABASE_URL", "postgres://db/fert")
	t.Setenv("CATALOG_PATH", "/etc/catalog.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, SourcePostgres, cfg.Reference.Source)
	assert.Equal(t, "postgres://db/fert", cfg.Database.URL)
	assert.Equal(t, "/etc/catalog.yaml", cfg.Advisory.CatalogPath)
	assert.True(t, cfg.Reference.IsSQL())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("LOG_LEVEL=warn\n"), 0o644))
	// godotenv does not override variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))
	t.Cleanup(func() { _ = os.Unsetenv("LOG_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = "http" }, "invalid port"},
		{"port range", func(c *Config) { c.Server.Port = "70000" }, "invalid port"},
		{"csv without path", func(c *Config) { c.Reference.Source = SourceCSV }, "requires reference.path"},
		{"sqlite without path", func(c *Config) { c.Reference.Source = SourceSQLite }, "requires reference.path"},
		{"postgres without url", func(c *Config) {
			c.Reference.Source = SourcePostgres
			c.Database.URL = ""
		}, "requires database.url"},
		{"unknown source", func(c *Config) { c.Reference.Source = "s3" }, "unknown reference source"},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
