package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perrors "github.com/matzehuels/panotour/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_DefaultLocationMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(`format = "yaml"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
format = "json"
layout = true

[cache]
enabled = false
ttl = "90m"

[server]
addr = "127.0.0.1:9000"
redis_addr = "localhost:6379"
mongo_uri = "mongodb://localhost:27017"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Format != "json" || !cfg.Layout {
		t.Errorf("Format/Layout = %q/%v", cfg.Format, cfg.Layout)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL.Std() != 90*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.RedisAddr != "localhost:6379" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.MongoDatabase != DefaultConfig().Server.MongoDatabase {
		t.Errorf("MongoDatabase = %q, want the default", cfg.Server.MongoDatabase)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown key", `colour = "red"`, "unknown keys: colour"},
		{"bad format", `format = "svg"`, "format"},
		{"bad ttl", "[cache]\nttl = \"soon\"", "soon"},
		{"zero ttl", "[cache]\nttl = \"0s\"", "cache.ttl"},
		{"bad redis addr", "[server]\nredis_addr = \"not an address\"", "server.redis_addr"},
		{"bad database", "[server]\nmongo_database = \"a/b\"", "server.mongo_database"},
		{"not toml", `format = `, "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
			if !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %q, want INVALID_CONFIG", perrors.GetCode(err))
			}
		})
	}
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("an explicit config path must exist")
	}
}

func TestConfigKey(t *testing.T) {
	tests := []struct{ ns, want string }{
		{"Config.Format", "format"},
		{"Config.Cache.TTL", "cache.ttl"},
		{"Config.Server.RedisAddr", "server.redis_addr"},
		{"ServerConfig.MongoURI", "mongo_uri"},
	}
	for _, tt := range tests {
		if got := configKey(tt.ns); got != tt.want {
			t.Errorf("configKey(%q) = %q, want %q", tt.ns, got, tt.want)
		}
	}
}
