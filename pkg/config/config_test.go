package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Store, cfg.Store)
	assert.Equal(t, d.Log, cfg.Log)
	assert.Equal(t, d.Telemetry, cfg.Telemetry)
	assert.Equal(t, d.Server.Addr, cfg.Server.Addr)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, d.Snapshot, cfg.Snapshot)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CHAINPATH_STORE_BACKEND", "memory")
	t.Setenv("CHAINPATH_LOG_LEVEL", "DEBUG")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chainpath.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: badger
  path: /srv/graph
log:
  json: true
server:
  addr: 0.0.0.0:9090
  cors_origins:
    - https://example.test
`), 0600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/graph", cfg.Store.Path)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://example.test"}, cfg.Server.CORSOrigins)
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown backend":    func(c *Config) { c.Store.Backend = "postgres" },
		"badger without dir": func(c *Config) { c.Store.Path = "" },
		"bad level":          func(c *Config) { c.Log.Level = "chatty" },
		"bad endpoint":       func(c *Config) { c.Telemetry.Endpoint = "not a url" },
		"bad addr":           func(c *Config) { c.Server.Addr = "nowhere" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMemoryBackendNeedsNoPath(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = BackendMemory
	cfg.Store.Path = ""
	assert.NoError(t, cfg.Validate())
}
