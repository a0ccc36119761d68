package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/panotour/internal/server"
	perrors "github.com/matzehuels/panotour/pkg/errors"
	"github.com/matzehuels/panotour/pkg/history"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

var validate = validator.New()

// Config is the optional config file.
//
//	format = "text"
//	layout = false
//
//	[cache]
//	enabled = true
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "panotour"
type Config struct {
	Format string       `toml:"format" validate:"oneof=text json yaml dot"`
	Layout bool         `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig configures the local report cache.
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	TTL     Duration `toml:"ttl" validate:"gt=0"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `toml:"addr" validate:"hostname_port"`
	RedisAddr     string `toml:"redis_addr" validate:"omitempty,hostname_port"`
	MongoURI      string `toml:"mongo_uri" validate:"omitempty,uri"`
	MongoDatabase string `toml:"mongo_database" validate:"required,max=64,excludesall=/. $"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Format: pipeline.DefaultFormat,
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(pipeline.DefaultCacheTTL),
		},
		Server: ServerConfig{
			Addr:          server.DefaultAddr,
			MongoDatabase: history.DefaultDatabase,
		},
	}
}

// LoadConfig reads the config file at path over the defaults. An empty path
// means the default location, which may be absent. An explicit path must
// exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", configKey(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// configKey turns a validator namespace such as "Config.Server.RedisAddr"
// into the file key "server.redis_addr".
func configKey(ns string) string {
	keys := map[string]string{
		"Format":        "format",
		"Layout":        "layout",
		"Cache":         "cache",
		"Enabled":       "enabled",
		"TTL":           "ttl",
		"Server":        "server",
		"Addr":          "addr",
		"RedisAddr":     "redis_addr",
		"MongoURI":      "mongo_uri",
		"MongoDatabase": "mongo_database",
	}
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if k, ok := keys[p]; ok {
			parts[i] = k
		}
	}
	return strings.Join(parts, ".")
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
