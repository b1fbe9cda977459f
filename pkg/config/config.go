// Package config loads the gerapost configuration file.
//
// The file is TOML and lives at ~/.config/gerapost/config.toml (honouring
// XDG_CONFIG_HOME). Every key is optional:
//
//	[store]
//	backend = "mongo"            # "local" or "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "gerapost"
//	debounce = "1.5s"
//
//	[import]
//	relay_url = "https://api.allorigins.win"
//	timeout = "15s"
//	cache = "file"               # "file", "redis" or "none"
//	redis_addr = "localhost:6379"
//	cache_ttl = "24h"
//
//	[export]
//	output_dir = "."
//	scale = 2
//
//	[fonts]
//	dir = "~/fonts"
//
// GERAPOST_MONGO_URI, GERAPOST_REDIS_ADDR and GERAPOST_RELAY_URL override
// the matching keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ncassessoria/gerapost/pkg/cache"
	perrors "github.com/ncassessoria/gerapost/pkg/errors"
	"github.com/ncassessoria/gerapost/pkg/export"
	"github.com/ncassessoria/gerapost/pkg/metadata"
	"github.com/ncassessoria/gerapost/pkg/store"
)

// AppName names the configuration and cache directories.
const AppName = "gerapost"

// Store backends.
const (
	StoreLocal = "local"
	StoreMongo = "mongo"
)

// Environment overrides.
const (
	EnvMongoURI  = "GERAPOST_MONGO_URI"
	EnvRedisAddr = "GERAPOST_REDIS_ADDR"
	EnvRelayURL  = "GERAPOST_RELAY_URL"
)

// Config is the whole configuration.
type Config struct {
	Store  Store  `toml:"store"`
	Import Import `toml:"import"`
	Export Export `toml:"export"`
	Fonts  Fonts  `toml:"fonts"`
}

// Store configures draft persistence.
type Store struct {
	Backend       string        `toml:"backend"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	Debounce      time.Duration `toml:"debounce"`
}

// Import configures the metadata importer.
type Import struct {
	RelayURL  string        `toml:"relay_url"`
	Timeout   time.Duration `toml:"timeout"`
	Cache     string        `toml:"cache"`
	RedisAddr string        `toml:"redis_addr"`
	CacheTTL  time.Duration `toml:"cache_ttl"`
}

// Export configures the export pipeline.
type Export struct {
	OutputDir string  `toml:"output_dir"`
	Scale     float64 `toml:"scale"`
}

// Fonts configures font lookup.
type Fonts struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Store: Store{
			Backend:       StoreLocal,
			MongoDatabase: store.DefaultMongoDatabase,
			Debounce:      store.DefaultDelay,
		},
		Import: Import{
			RelayURL: metadata.DefaultRelay,
			Timeout:  metadata.DefaultTimeout,
			Cache:    cache.BackendFile,
			CacheTTL: metadata.DefaultCacheTTL,
		},
		Export: Export{
			OutputDir: ".",
			Scale:     export.DefaultScale,
		},
	}
}

// Dir returns ~/.config/gerapost, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if h := os.Getenv("XDG_CONFIG_HOME"); h != "" {
		return filepath.Join(h, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns ~/.cache/gerapost, honouring XDG_CACHE_HOME.
func CacheDir() (string, error) {
	if h := os.Getenv("XDG_CACHE_HOME"); h != "" {
		return filepath.Join(h, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads path over the defaults and applies environment overrides. An
// empty path reads the default file; a missing default file is not an
// error, a missing explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "cannot read config %s", path)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid config %s", path)
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.Fonts.Dir = expandHome(cfg.Fonts.Dir)
	cfg.Export.OutputDir = expandHome(cfg.Export.OutputDir)
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Import.RedisAddr = v
	}
	if v := getenv(EnvRelayURL); v != "" {
		c.Import.RelayURL = v
	}
}

// Validate checks the values the rest of the program relies on.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreLocal:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "store backend mongo needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "unknown store backend %q (use local or mongo)", c.Store.Backend)
	}
	switch c.Import.Cache {
	case cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Import.RedisAddr == "" {
			return perrors.New(perrors.ErrCodeInvalidInput, "import cache redis needs redis_addr or %s", EnvRedisAddr)
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "unknown import cache %q (use file, redis or none)", c.Import.Cache)
	}
	if c.Import.RelayURL != "" {
		if err := perrors.ValidateURL(c.Import.RelayURL); err != nil {
			return fmt.Errorf("relay_url: %w", err)
		}
	}
	if c.Export.Scale < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "export scale must be positive, got %v", c.Export.Scale)
	}
	if c.Store.Debounce < 0 || c.Import.Timeout < 0 || c.Import.CacheTTL < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
