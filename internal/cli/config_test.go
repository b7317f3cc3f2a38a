package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarlsen/rivalmap/pkg/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "file" || cfg.Store.Backend != "file" {
		t.Error("defaults should use file backends")
	}
	if cfg.SpacingOverride() != nil {
		t.Error("no spacing section should mean no override")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rivalmap.toml")
	content := `
[server]
addr = ":9000"

[cache]
backend = "null"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[spacing]
horizontal = 200
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "null" {
		t.Errorf("cache backend = %q, want null", cfg.Cache.Backend)
	}
	if cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("mongo URI = %q", cfg.Store.MongoURI)
	}

	s := cfg.SpacingOverride()
	if s == nil {
		t.Fatal("spacing section should produce an override")
	}
	if s.Horizontal != 200 {
		t.Errorf("Horizontal = %v, want 200", s.Horizontal)
	}
	if s.Vertical == 0 {
		t.Error("unset spacing fields should keep defaults")
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed TOML should be rejected")
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "etcd"
	if _, err := openStore(context.Background(), cfg); err == nil {
		t.Error("unknown store backend should be rejected")
	}
}

func TestOpenCacheUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Backend = "memcached"
	if _, err := openCache(context.Background(), cfg); err == nil {
		t.Error("unknown cache backend should be rejected")
	}
}

func TestOpenCacheRedisRequiresURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Backend = "redis"
	if _, err := openCache(context.Background(), cfg); err == nil {
		t.Error("redis backend without a URL should be rejected")
	}
}
