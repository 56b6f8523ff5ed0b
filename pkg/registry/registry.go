package registry

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratagraph/pkg/cache"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/export"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/importer/graphml"
	"github.com/matzehuels/stratagraph/pkg/observability"
	"github.com/matzehuels/stratagraph/pkg/rules"
)

// Format selects the input decoder of Load.
type Format string

const (
	// FormatAuto sniffs the content: XML is a diagram, anything else an
	// export document.
	FormatAuto    Format = ""
	FormatGraphML Format = "graphml"
	FormatJSON    Format = "json"
)

// ParseFormat resolves a format name. Empty and "auto" mean FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "graphml", "xml":
		return FormatGraphML, nil
	case "json", "export":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", s)
}

// FormatFromPath guesses the format from a file name.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".graphml", ".xml":
		return FormatGraphML
	case ".json", export.CompressedExt:
		return FormatJSON
	}
	return FormatAuto
}

// Options configures a Registry.
type Options struct {
	// Rules validates every imported graph. Nil uses the embedded table.
	Rules *rules.Table
	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
	// Cache stores import results. Nil disables caching.
	Cache cache.Cache
	// Keyer derives cache keys. Nil uses cache.DefaultKeyer.
	Keyer cache.Keyer
	// CacheTTL bounds the lifetime of cache entries; zero keeps them.
	CacheTTL time.Duration
	// IDGenerator produces stable ids for diagram imports.
	IDGenerator graphml.IDGenerator
	// Language keys names and descriptions of imported diagrams.
	Language string
}

// LoadOptions configures a single Load.
type LoadOptions struct {
	// ID is the placeholder the caller refers to the graph by. It is used
	// as the graph id when the document carries none, and kept as an alias
	// otherwise.
	ID string
	// Overwrite replaces an already registered graph with the same id.
	Overwrite bool
	// Format selects the decoder.
	Format Format
	// Refresh bypasses the cache lookup (the result is still stored).
	Refresh bool
}

// Registry maps graph ids and aliases to graphs.
//
// A Registry is not safe for concurrent use; hosts that share one across
// goroutines must serialize access.
type Registry struct {
	opts    Options
	graphs  map[string]*graph.Graph
	order   []string
	aliases map[string]string // alias -> canonical id
}

// New creates an empty registry.
func New(opts Options) *Registry {
	if opts.Rules == nil {
		opts.Rules = rules.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	return &Registry{
		opts:    opts,
		graphs:  make(map[string]*graph.Graph),
		aliases: make(map[string]string),
	}
}

// Rules returns the rule table graphs are validated against.
func (r *Registry) Rules() *rules.Table { return r.opts.Rules }

// =============================================================================
// Loading
// =============================================================================

// Load imports one document and registers the resulting graphs. It returns
// the id of the (first) graph registered.
//
// Export documents may hold several graphs; all are registered and the
// placeholder only aliases the graph when there is exactly one. Registering
// an id that is already taken fails with DUPLICATE_GRAPH unless Overwrite
// is set; in that case nothing from the document is registered.
func (r *Registry) Load(ctx context.Context, rd io.Reader, lo LoadOptions) (string, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMalformedDocument, err, "read input")
	}
	if lo.ID != "" {
		if err := errors.ValidateID(lo.ID); err != nil {
			return "", err
		}
	}
	format := lo.Format
	if format == FormatAuto {
		format = sniff(data)
	}

	start := time.Now()
	observability.Import().OnImportStart(ctx, string(format), lo.ID)
	graphs, err := r.decode(ctx, data, format, lo)
	if err == nil {
		err = r.register(graphs, lo)
	}
	var stats observability.ImportStats
	if err == nil {
		stats = importStats(graphs)
	}
	observability.Import().OnImportComplete(ctx, string(format), lo.ID, stats, time.Since(start), err)
	if err != nil {
		return "", err
	}
	return graphs[0].ID, nil
}

// LoadFile loads the document at path. An empty lo.Format is derived from
// the file extension before falling back to sniffing.
func (r *Registry) LoadFile(ctx context.Context, path string, lo LoadOptions) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return "", errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	if lo.Format == FormatAuto {
		lo.Format = FormatFromPath(path)
	}
	return r.Load(ctx, f, lo)
}

func importStats(graphs []*graph.Graph) observability.ImportStats {
	stats := observability.ImportStats{GraphID: graphs[0].ID}
	for _, g := range graphs {
		stats.Nodes += g.NodeCount()
		stats.Edges += g.EdgeCount()
		stats.Warnings += g.WarningCount("")
	}
	return stats
}

func sniff(data []byte) Format {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return FormatGraphML
	}
	return FormatJSON
}

// decode turns input bytes into graphs, going through the cache.
func (r *Registry) decode(ctx context.Context, data []byte, format Format, lo LoadOptions) ([]*graph.Graph, error) {
	if format == FormatJSON {
		doc, err := export.Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return r.fromDocument(doc)
	}

	key := r.opts.Keyer.ImportKey(cache.Hash(data), r.opts.Rules.Hash(), string(format)+":"+lo.ID)
	if !lo.Refresh {
		if cached, hit, err := r.opts.Cache.Get(ctx, key); err == nil && hit {
			if doc, err := export.Read(bytes.NewReader(cached)); err == nil {
				if graphs, err := r.fromDocument(doc); err == nil {
					observability.Cache().OnCacheHit(ctx, "import")
					r.opts.Logger.Debug("import cache hit", "graph", graphs[0].ID)
					return graphs, nil
				}
			}
		} else if err != nil {
			r.opts.Logger.Warn("cache lookup failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "import")
	}

	g, _, err := graphml.Parse(data, graphml.Options{
		GraphID:     lo.ID,
		Rules:       r.opts.Rules,
		Logger:      r.opts.Logger,
		IDGenerator: r.opts.IDGenerator,
		Language:    r.opts.Language,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, export.Build(g)); err == nil {
		if err := r.opts.Cache.Set(ctx, key, buf.Bytes(), r.opts.CacheTTL); err != nil {
			r.opts.Logger.Warn("cache store failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "import", buf.Len())
		}
	}
	return []*graph.Graph{g}, nil
}

func (r *Registry) fromDocument(doc export.Document) ([]*graph.Graph, error) {
	graphs, err := export.Graphs(doc, graph.WithRules(r.opts.Rules))
	if err != nil {
		return nil, err
	}
	if len(graphs) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document contains no graphs")
	}
	return graphs, nil
}

// register adds graphs atomically: either all of them or none.
func (r *Registry) register(graphs []*graph.Graph, lo LoadOptions) error {
	placeholder := ""
	if len(graphs) == 1 && lo.ID != "" && lo.ID != graphs[0].ID {
		placeholder = lo.ID
	}
	if !lo.Overwrite {
		for _, g := range graphs {
			if r.taken(g.ID) {
				return errors.New(errors.ErrCodeDuplicateGraph, "graph %s already registered", g.ID)
			}
		}
		if placeholder != "" && r.taken(placeholder) {
			return errors.New(errors.ErrCodeDuplicateGraph, "graph %s already registered", placeholder)
		}
	}
	for _, g := range graphs {
		r.put(g)
		r.opts.Logger.Info("registered graph", "graph", g.ID, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}
	if placeholder != "" {
		r.alias(placeholder, graphs[0].ID)
	}
	return nil
}

func (r *Registry) taken(id string) bool {
	_, ok := r.graphs[id]
	_, aliased := r.aliases[id]
	return ok || aliased
}

// put stores g under its id, replacing whatever held that name.
func (r *Registry) put(g *graph.Graph) {
	if canonical, ok := r.aliases[g.ID]; ok {
		delete(r.aliases, g.ID)
		r.opts.Logger.Debug("alias replaced by graph", "alias", g.ID, "was", canonical)
	}
	if _, ok := r.graphs[g.ID]; !ok {
		r.order = append(r.order, g.ID)
	}
	r.graphs[g.ID] = g
}

func (r *Registry) alias(alias, canonical string) {
	if _, ok := r.graphs[alias]; ok {
		r.drop(alias)
	}
	r.aliases[alias] = canonical
}

// =============================================================================
// Access
// =============================================================================

// Add registers an already built graph. It fails with DUPLICATE_GRAPH when
// the id is taken and overwrite is false.
func (r *Registry) Add(g *graph.Graph, overwrite bool) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil graph")
	}
	if err := errors.ValidateID(g.ID); err != nil {
		return err
	}
	if !overwrite && r.taken(g.ID) {
		return errors.New(errors.ErrCodeDuplicateGraph, "graph %s already registered", g.ID)
	}
	r.put(g)
	return nil
}

// Resolve maps an id or alias to the canonical graph id.
func (r *Registry) Resolve(id string) (string, bool) {
	if _, ok := r.graphs[id]; ok {
		return id, true
	}
	canonical, ok := r.aliases[id]
	return canonical, ok
}

// Get returns the graph registered under id or one of its aliases. An empty
// id returns the only graph when exactly one is registered. Misses are not
// errors.
func (r *Registry) Get(id string) (*graph.Graph, bool) {
	if id == "" {
		if len(r.order) == 1 {
			return r.graphs[r.order[0]], true
		}
		return nil, false
	}
	canonical, ok := r.Resolve(id)
	if !ok {
		return nil, false
	}
	return r.graphs[canonical], true
}

// IDs returns the canonical ids in registration order.
func (r *Registry) IDs() []string { return slices.Clone(r.order) }

// Len returns the number of registered graphs.
func (r *Registry) Len() int { return len(r.order) }

// Graphs returns the registered graphs in registration order.
func (r *Registry) Graphs() []*graph.Graph {
	out := make([]*graph.Graph, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.graphs[id])
	}
	return out
}

// Aliases returns the aliases of the graph registered as id, sorted.
func (r *Registry) Aliases(id string) []string {
	canonical, ok := r.Resolve(id)
	if !ok {
		return nil
	}
	var out []string
	for alias, target := range r.aliases {
		if target == canonical {
			out = append(out, alias)
		}
	}
	slices.Sort(out)
	return out
}

// Rename moves a graph to newID and, when newName is not empty, sets its
// display name. An empty newID keeps the current id. The old id stays
// reachable as an alias. Returns NOT_FOUND for unknown ids and
// DUPLICATE_GRAPH when newID names another graph.
func (r *Registry) Rename(oldID, newID, newName string) error {
	canonical, ok := r.Resolve(oldID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "graph %s not found", oldID)
	}
	if newID == "" {
		newID = canonical
	}
	if err := errors.ValidateID(newID); err != nil {
		return err
	}
	if target, ok := r.Resolve(newID); ok && target != canonical {
		return errors.New(errors.ErrCodeDuplicateGraph, "graph %s already registered", newID)
	}
	g := r.graphs[canonical]
	if newName != "" {
		g.Name[graph.DefaultLanguage] = newName
	}
	if newID == canonical {
		return nil
	}

	delete(r.aliases, newID)
	delete(r.graphs, canonical)
	idx := slices.Index(r.order, canonical)
	r.order[idx] = newID
	g.ID = newID
	r.graphs[newID] = g
	for alias, target := range r.aliases {
		if target == canonical {
			r.aliases[alias] = newID
		}
	}
	r.aliases[canonical] = newID
	return nil
}

// Remove drops the graph registered as id together with every alias.
// Returns NOT_FOUND for unknown ids.
func (r *Registry) Remove(id string) error {
	canonical, ok := r.Resolve(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	r.drop(canonical)
	return nil
}

func (r *Registry) drop(canonical string) {
	delete(r.graphs, canonical)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == canonical })
	for alias, target := range r.aliases {
		if target == canonical {
			delete(r.aliases, alias)
		}
	}
}

// Export builds an export document of the given graphs, or of every graph
// when ids is empty. Unknown ids fail with NOT_FOUND.
func (r *Registry) Export(ctx context.Context, ids ...string) (export.Document, error) {
	start := time.Now()
	graphs := r.Graphs()
	if len(ids) > 0 {
		graphs = graphs[:0:0]
		for _, id := range ids {
			g, ok := r.Get(id)
			if !ok {
				err := errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
				observability.Import().OnExport(ctx, 0, time.Since(start), err)
				return export.Document{}, err
			}
			graphs = append(graphs, g)
		}
	}
	doc := export.Build(graphs...)
	observability.Import().OnExport(ctx, len(doc.Graphs), time.Since(start), nil)
	return doc, nil
}
