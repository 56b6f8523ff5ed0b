// Package config loads the stratagraph configuration file.
//
// The file is TOML and every key is optional:
//
//	rules = "~/rules/site.yaml"   # connection rules; embedded table when empty
//	language = "en"
//
//	[cache]
//	backend = "file"              # file | redis | none
//	dir = ""                      # file backend; XDG cache dir when empty
//	redis_url = "redis://localhost:6379/0"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
//	load = ["data/**/*.graphml"]
//
//	[render]
//	format = "svg"
//	rankdir = "BT"
//	epochs = true
//	paradata = false
//
// Command-line flags override the file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stratagraph/pkg/buildinfo"
	"github.com/matzehuels/stratagraph/pkg/cache"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/rules"
)

// FileName is the configuration file looked up in the config directory.
const FileName = buildinfo.Name + ".toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Rules    string       `toml:"rules"`
	Language string       `toml:"language"`
	Cache    CacheConfig  `toml:"cache"`
	Server   ServerConfig `toml:"server"`
	Render   RenderConfig `toml:"render"`
}

// CacheConfig selects and configures the import cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Load lists glob patterns of documents loaded at startup.
	Load []string `toml:"load"`
}

// RenderConfig holds diagram rendering defaults.
type RenderConfig struct {
	Format   string `toml:"format"`
	RankDir  string `toml:"rankdir"`
	Epochs   bool   `toml:"epochs"`
	Paradata bool   `toml:"paradata"`
}

// Duration is a time.Duration written as a Go duration string ("30m").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language: "en",
		Cache:    CacheConfig{Backend: BackendFile},
		Server:   ServerConfig{Addr: ":8080"},
		Render:   RenderConfig{Format: "svg", RankDir: "BT"},
	}
}

// Load reads the configuration at path on top of the defaults. An empty
// path reads the default location and tolerates its absence; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML into a copy of base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch strings.ToUpper(c.Render.RankDir) {
	case "", "TB", "BT", "LR", "RL":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown rankdir %q", c.Render.RankDir)
	}
	return nil
}

// LoadRules returns the configured rule table, or the embedded one.
func (c Config) LoadRules() (*rules.Table, error) {
	if c.Rules == "" {
		return rules.Default(), nil
	}
	return rules.Load(expandHome(c.Rules))
}

// OpenCache builds the configured cache backend.
func (c CacheConfig) OpenCache() (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(cache.RedisOptions{URL: c.RedisURL, Prefix: buildinfo.Name + ":"})
	}
	dir, err := c.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// CacheDir returns the file cache directory: the configured one, else
// $XDG_CACHE_HOME/stratagraph, else ~/.cache/stratagraph.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return expandHome(c.Dir), nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, buildinfo.Name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", buildinfo.Name), nil
}

// DefaultPath returns $XDG_CONFIG_HOME/stratagraph/stratagraph.toml, or
// the same below ~/.config.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, buildinfo.Name, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", buildinfo.Name, FileName), nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
