package cli

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/mkarlsen/rivalmap/pkg/cache"
	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/place"
	"github.com/mkarlsen/rivalmap/pkg/store"
)

// defaultConfigFile is looked up in the working directory when no
// --config flag is given. A missing file is not an error; defaults
// apply.
const defaultConfigFile = "rivalmap.toml"

// Config is the TOML configuration for the CLI and server.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Spacing SpacingConfig `toml:"spacing"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	// Backend is one of "null", "file", or "redis".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// StoreConfig selects and configures the dataset store backend.
type StoreConfig struct {
	// Backend is one of "file" or "mongo".
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// SpacingConfig optionally overrides layout spacing constants. Zero
// fields keep the built-in defaults.
type SpacingConfig struct {
	MarginX    float64 `toml:"margin_x"`
	Horizontal float64 `toml:"horizontal"`
	Vertical   float64 `toml:"vertical"`
	CenterY    float64 `toml:"center_y"`
}

// DefaultConfig returns the configuration used when no file is found:
// file-backed store and cache under ./data, server on :8080.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: "file", Dir: "data/cache"},
		Store:  StoreConfig{Backend: "file", Dir: "data/datasets", MongoDatabase: "rivalmap"},
	}
}

// LoadConfig reads the TOML config at path, or rivalmap.toml in the
// working directory when path is empty. A missing default file yields
// the built-in defaults; a missing explicit path is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "config file %q not found", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

// SpacingOverride converts the config spacing section to a pipeline
// spacing override, or nil when every field is zero.
func (c Config) SpacingOverride() *place.Spacing {
	sc := c.Spacing
	if sc == (SpacingConfig{}) {
		return nil
	}
	s := place.DefaultSpacing()
	if sc.MarginX > 0 {
		s.MarginX = sc.MarginX
	}
	if sc.Horizontal > 0 {
		s.Horizontal = sc.Horizontal
	}
	if sc.Vertical > 0 {
		s.Vertical = sc.Vertical
	}
	if sc.CenterY > 0 {
		s.CenterY = sc.CenterY
	}
	return &s
}

// openStore builds the configured dataset store.
func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Store.Dir)
	case "mongo":
		if cfg.Store.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires mongo_uri")
		}
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Store.Backend)
	}
}

// openCache builds the configured layout cache.
func openCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "null":
		return cache.NewNullCache(), nil
	case "", "file":
		return cache.NewFileCache(cfg.Cache.Dir)
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
		}
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Cache.Backend)
	}
}
