// Package rules loads and evaluates the connection rule table.
//
// The table is a declarative allow-list: for every edge type it names the
// node kinds allowed at the source and at the target. Entries may name a
// family ("strat", "paradata", ...), a concrete kind ("document") or "any";
// a family entry accepts every kind of that family.
//
// The default table is embedded from rules.toml. Hosts may load their own
// from a TOML or YAML file with [Load]; the table is read-only once loaded.
package rules

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"lukechampine.com/blake3"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/model"
)

//go:embed rules.toml
var defaultRules []byte

// Format selects the encoding of a rules document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

const anyEntry = "any"

// file is the on-disk shape shared by the TOML and YAML encodings.
type file struct {
	Version string               `toml:"version" yaml:"version"`
	Edges   map[string]entryFile `toml:"edges" yaml:"edges"`
}

type entryFile struct {
	Label       string   `toml:"label" yaml:"label"`
	Description string   `toml:"description" yaml:"description"`
	Source      []string `toml:"source" yaml:"source"`
	Target      []string `toml:"target" yaml:"target"`
}

// Matcher is one allow-list entry: any kind, a whole family, or one kind.
type Matcher struct {
	Any    bool
	Family model.Family
	Kind   model.Kind
}

// Matches reports whether k satisfies the entry. Kinds outside the
// vocabulary never match, not even "any".
func (m Matcher) Matches(k model.Kind) bool {
	if !k.IsKnown() {
		return false
	}
	switch {
	case m.Any:
		return true
	case m.Family != model.FamilyNone:
		return model.FamilyOf(k) == m.Family
	default:
		return m.Kind == k
	}
}

// String returns the entry as written in the rules document.
func (m Matcher) String() string {
	switch {
	case m.Any:
		return anyEntry
	case m.Family != model.FamilyNone:
		return m.Family.String()
	default:
		return string(m.Kind)
	}
}

func parseMatcher(s string) (Matcher, error) {
	s = strings.TrimSpace(s)
	if s == anyEntry {
		return Matcher{Any: true}, nil
	}
	if f, ok := model.ParseFamily(s); ok {
		return Matcher{Family: f}, nil
	}
	if k, ok := model.ParseKind(s); ok {
		return Matcher{Kind: k}, nil
	}
	return Matcher{}, fmt.Errorf("unknown kind or family %q", s)
}

// Rule is the allow-list of one edge type.
type Rule struct {
	Type        model.EdgeType
	Label       string
	Description string
	Sources     []Matcher
	Targets     []Matcher
}

// Allows reports whether an edge from src to dst satisfies the rule.
func (r Rule) Allows(src, dst model.Kind) bool {
	return matchesAny(r.Sources, src) && matchesAny(r.Targets, dst)
}

func matchesAny(ms []Matcher, k model.Kind) bool {
	for _, m := range ms {
		if m.Matches(k) {
			return true
		}
	}
	return false
}

// Table is an immutable connection rule table.
type Table struct {
	version string
	rules   map[model.EdgeType]Rule
	hash    string
}

// ValidateConnection reports whether an edge of type t may join a node of
// kind src to a node of kind dst. Unknown kinds or edge types yield false.
func (t *Table) ValidateConnection(src, dst model.Kind, et model.EdgeType) bool {
	r, ok := t.rules[et]
	if !ok {
		return false
	}
	return r.Allows(src, dst)
}

// Rule returns the rule of an edge type.
func (t *Table) Rule(et model.EdgeType) (Rule, bool) {
	r, ok := t.rules[et]
	return r, ok
}

// Knows reports whether et has a rule.
func (t *Table) Knows(et model.EdgeType) bool {
	_, ok := t.rules[et]
	return ok
}

// EdgeTypes returns every edge type in the table, sorted.
func (t *Table) EdgeTypes() []model.EdgeType {
	out := make([]model.EdgeType, 0, len(t.rules))
	for et := range t.rules {
		out = append(out, et)
	}
	slices.Sort(out)
	return out
}

// AllowedTypes returns, sorted, every edge type that may join src to dst.
func (t *Table) AllowedTypes(src, dst model.Kind) []model.EdgeType {
	var out []model.EdgeType
	for et, r := range t.rules {
		if r.Allows(src, dst) {
			out = append(out, et)
		}
	}
	slices.Sort(out)
	return out
}

// Version returns the version string declared by the rules document.
func (t *Table) Version() string { return t.version }

// Hash returns a content hash of the rules document, stable across loads
// of the same bytes. It keys caches whose content depends on the rules.
func (t *Table) Hash() string { return t.hash }

// Parse decodes a rules document. Every table must define the generic
// fallback type so downgraded edges always have a valid type.
func Parse(data []byte, format Format) (*Table, error) {
	var f file
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "decode toml rules")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "decode yaml rules")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported rules format %q", format)
	}

	t := &Table{version: f.Version, rules: make(map[model.EdgeType]Rule, len(f.Edges))}
	for name, e := range f.Edges {
		r := Rule{Type: model.EdgeType(name), Label: e.Label, Description: e.Description}
		var err error
		if r.Sources, err = parseMatchers(e.Source); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "edge %s source", name)
		}
		if r.Targets, err = parseMatchers(e.Target); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "edge %s target", name)
		}
		t.rules[r.Type] = r
	}
	if _, ok := t.rules[model.EdgeGeneric]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidRules, "rules must define %s", model.EdgeGeneric)
	}

	sum := blake3.Sum256(data)
	t.hash = hex.EncodeToString(sum[:])
	return t, nil
}

func parseMatchers(entries []string) ([]Matcher, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("empty allow-list")
	}
	out := make([]Matcher, 0, len(entries))
	for _, s := range entries {
		m, err := parseMatcher(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Load reads a rules file. The format follows the extension: .yaml and .yml
// decode as YAML, everything else as TOML.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "rules file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, FormatFromPath(path))
}

// FormatFromPath guesses the rules format from a file name.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

var loadDefault = sync.OnceValue(func() *Table {
	t, err := Parse(defaultRules, FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded table is invalid: %v", err))
	}
	return t
})

// Default returns the embedded rule table. It is shared and read-only.
func Default() *Table { return loadDefault() }

// DefaultDocument returns the raw embedded rules document, for hosts that
// want to write it out as a starting point for their own table.
func DefaultDocument() []byte { return slices.Clone(defaultRules) }
