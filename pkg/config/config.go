// Package config defines runtime configuration and its defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// EnvPrefix is prepended to every environment override, e.g.
// CHAINPATH_STORE_BACKEND.
const EnvPrefix = "CHAINPATH"

// Config is the full runtime configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
}

type StoreConfig struct {
	// Backend selects where adjacency maps live.
	Backend string `mapstructure:"backend" validate:"oneof=memory badger"`
	// Path is the Badger data directory.
	Path string `mapstructure:"path" validate:"required_if=Backend badger"`
	// SyncWrites fsyncs every Badger commit.
	SyncWrites bool `mapstructure:"sync_writes"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP URL. Empty falls back to
	// OTEL_EXPORTER_OTLP_ENDPOINT, then to a discarding exporter.
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	Disabled bool   `mapstructure:"disabled"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string `mapstructure:"cors_origins" validate:"dive,required"`
}

type SnapshotConfig struct {
	// URL is "s3://bucket/key" or a filesystem path.
	URL string `mapstructure:"url" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	dataDir := ".chainpath"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".chainpath")
	}
	return Config{
		Store: StoreConfig{
			Backend:    BackendBadger,
			Path:       filepath.Join(dataDir, "graph"),
			SyncWrites: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Snapshot: SnapshotConfig{
			URL: filepath.Join(dataDir, "snapshot.json"),
		},
	}
}

// SetDefaults registers Default() with v so env vars and config files can
// override any key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.sync_writes", d.Store.SyncWrites)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.disabled", d.Telemetry.Disabled)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("snapshot.url", d.Snapshot.URL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
