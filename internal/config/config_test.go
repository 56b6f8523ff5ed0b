package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stratagraph/pkg/cache"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/rules"
)

func TestParse(t *testing.T) {
	data := []byte(`
rules = "site.yaml"

[cache]
backend = "none"
ttl = "2h"

[server]
addr = ":9090"
load = ["data/*.graphml"]

[render]
epochs = true
`)
	got, err := Parse(data, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := Default()
	want.Rules = "site.yaml"
	want.Cache = CacheConfig{Backend: BackendNone, TTL: Duration{2 * time.Hour}}
	want.Server = ServerConfig{Addr: ":9090", Load: []string{"data/*.graphml"}}
	want.Render.Epochs = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `rules = `},
		{"unknown key", `colour = "red"`},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"bad rankdir", "[render]\nrankdir = \"UP\""},
		{"bad ttl", "[cache]\nttl = \"soon\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data), Default()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadDefaultLocation(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing default file should give defaults (-want +got):\n%s", diff)
	}

	path, _ := DefaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("language = \"it\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil || cfg.Language != "it" {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/cache")

	if p, _ := DefaultPath(); p != filepath.Join("/cfg", "stratagraph", "stratagraph.toml") {
		t.Errorf("DefaultPath() = %s", p)
	}
	if d, _ := (CacheConfig{}).CacheDir(); d != filepath.Join("/cache", "stratagraph") {
		t.Errorf("CacheDir() = %s", d)
	}
	if d, _ := (CacheConfig{Dir: "/tmp/x"}).CacheDir(); d != "/tmp/x" {
		t.Errorf("CacheDir(explicit) = %s", d)
	}
}

func TestOpenCache(t *testing.T) {
	c, err := CacheConfig{Backend: BackendNone}.OpenCache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("backend none = %T, want NullCache", c)
	}

	c, err = CacheConfig{Dir: t.TempDir()}.OpenCache()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("default backend = %T, want *FileCache", c)
	}

	c, err = CacheConfig{Backend: BackendRedis, RedisURL: "redis://127.0.0.1:1/0"}.OpenCache()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*cache.RedisCache); !ok {
		t.Errorf("backend redis = %T, want *RedisCache", c)
	}
}

func TestLoadRules(t *testing.T) {
	tbl, err := Default().LoadRules()
	if err != nil || tbl != rules.Default() {
		t.Errorf("LoadRules() default = %v, %v", tbl, err)
	}

	path := filepath.Join(t.TempDir(), "rules.toml")
	if err := os.WriteFile(path, rules.DefaultDocument(), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.Rules = path
	tbl, err = cfg.LoadRules()
	if err != nil || tbl.Hash() != rules.Default().Hash() {
		t.Errorf("LoadRules(file) = %v, %v", tbl, err)
	}
}
