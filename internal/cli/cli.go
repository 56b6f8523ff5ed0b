// Package cli implements the stratagraph command-line interface.
//
// Commands load stratigraphic diagrams and export documents into a
// registry, then export, inspect, render or serve them:
//   - import: read diagrams (glob patterns allowed) and write an export document
//   - export: convert or filter an existing export document
//   - inspect: print counts, warnings and chronology of a document
//   - render: draw a graph with Graphviz
//   - serve: expose documents over a read-only HTTP API
//   - cache: manage the import cache
//   - rules: show the connection rule table
//
// All commands accept --config to point at a stratagraph.toml; flags
// override the file.
package cli

import (
	"io"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/internal/config"
	"github.com/matzehuels/stratagraph/pkg/buildinfo"
	"github.com/matzehuels/stratagraph/pkg/cache"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/registry"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          buildinfo.Name,
		Short:        "Stratagraph builds knowledge graphs from stratigraphic diagrams",
		Long:         `Stratagraph imports Harris-matrix style diagrams into typed, rule-validated graphs of stratigraphic units, their documentation and the epochs they belong to.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stratagraph/stratagraph.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the configuration once per invocation.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "rules", cfg.Rules)
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Registry Factory
// =============================================================================

// newRegistry creates a registry wired to the configured rules and cache.
func (c *CLI) newRegistry(noCache bool) (*registry.Registry, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	tbl, err := cfg.LoadRules()
	if err != nil {
		return nil, err
	}
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		store, err = cfg.Cache.OpenCache()
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "error", err)
			store = cache.NewNullCache()
		}
	}
	return registry.New(registry.Options{
		Rules:    tbl,
		Logger:   c.Logger,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL.Duration,
		Language: cfg.Language,
	}), nil
}

// =============================================================================
// Inputs
// =============================================================================

// expandInputs resolves glob patterns to a sorted, de-duplicated file list.
// Plain paths pass through unchanged so that missing files surface as
// FILE_NOT_FOUND at load time.
func expandInputs(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, p := range patterns {
		if !doublestar.ValidatePathPattern(p) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid pattern %q", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "expand %s", p)
		}
		if len(matches) == 0 {
			if hasMeta(p) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "no files match %s", p)
			}
			matches = []string{p}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func hasMeta(p string) bool {
	for _, r := range p {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// loadAll loads every input into reg. The placeholder id only applies to a
// single input.
func (c *CLI) loadAll(cmd *cobra.Command, reg *registry.Registry, files []string, lo registry.LoadOptions) ([]string, error) {
	if err := checkSingleID(files, lo.ID); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		id, err := reg.LoadFile(cmd.Context(), f, lo)
		if err != nil {
			return ids, err
		}
		c.Logger.Debug("loaded", "file", f, "graph", id)
		ids = append(ids, id)
	}
	return ids, nil
}

func checkSingleID(files []string, id string) error {
	if len(files) > 1 && id != "" {
		return errors.New(errors.ErrCodeInvalidInput, "--id needs exactly one input, got %d", len(files))
	}
	return nil
}
