package graph

import (
	"slices"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/model"
	"github.com/matzehuels/stratagraph/pkg/rules"
)

// DefaultLanguage is the language key used for names and descriptions when
// the caller does not pick one.
const DefaultLanguage = "en"

// GeoNodePrefix prefixes the id of the implicit geo reference node.
const GeoNodePrefix = "geo_"

// Defaults are the graph-wide publication settings.
type Defaults struct {
	License      string
	Authors      []string // author node ids
	EmbargoUntil string
}

// Graph is one logical diagram: typed nodes, typed edges and diagnostics.
//
// The zero value is not usable - use New.
type Graph struct {
	// ID identifies the graph. It may be reassigned once the real id is
	// discovered from imported content; registries track the old one as an
	// alias.
	ID          string
	Name        map[string]string
	Description map[string]string
	Defaults    Defaults

	rules     *rules.Table
	nodes     map[string]*model.Node
	nodeOrder []string
	edges     map[string]*model.Edge
	edgeOrder []string
	warnings  []Warning

	index    *Index
	dirty    bool
	rebuilds int
}

// Option configures a Graph at construction.
type Option func(*Graph)

// WithRules validates edges against t instead of the embedded default table.
func WithRules(t *rules.Table) Option {
	return func(g *Graph) {
		if t != nil {
			g.rules = t
		}
	}
}

// WithName sets the display name in the default language.
func WithName(name string) Option {
	return func(g *Graph) { g.Name[DefaultLanguage] = name }
}

// New creates an empty graph. The implicit geo reference node is created
// here and is the only node of a fresh graph.
func New(id string, opts ...Option) *Graph {
	g := &Graph{
		ID:          id,
		Name:        map[string]string{},
		Description: map[string]string{},
		rules:       rules.Default(),
		nodes:       make(map[string]*model.Node),
		edges:       make(map[string]*model.Edge),
		dirty:       true,
	}
	for _, opt := range opts {
		opt(g)
	}
	geo := model.NewNode(GeoNodePrefix+id, "Geo reference", model.KindGeo)
	g.AddNode(geo, false)
	return g
}

// Rules returns the rule table edges are validated against.
func (g *Graph) Rules() *rules.Table { return g.rules }

// DisplayName returns the name in the default language, falling back to
// any language, then to the id.
func (g *Graph) DisplayName() string {
	return pickLanguage(g.Name, g.ID)
}

// DisplayDescription returns the description in the default language,
// falling back to any language.
func (g *Graph) DisplayDescription() string {
	return pickLanguage(g.Description, "")
}

func pickLanguage(m map[string]string, fallback string) string {
	if s := m[DefaultLanguage]; s != "" {
		return s
	}
	for _, lang := range sortedKeys(m) {
		if m[lang] != "" {
			return m[lang]
		}
	}
	return fallback
}

// GeoNode returns the implicit geo reference node.
func (g *Graph) GeoNode() *model.Node {
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Kind == model.KindGeo {
			return n
		}
	}
	return nil
}

// =============================================================================
// Mutation
// =============================================================================

// AddNode inserts n and returns the node stored under its id.
//
// When the id is already taken and overwrite is false, the existing node is
// returned unchanged. With overwrite the old node is replaced (keeping its
// position in enumeration order) and a warning is recorded. A nil node or
// empty id is tolerated: nil is returned and a data-quality warning logged.
//
// A graph holds exactly one geo reference node. Adding another geo node
// replaces the current one: it takes over its position and incident edges.
// The geo node is never overwritten by a node of another kind.
func (g *Graph) AddNode(n *model.Node, overwrite bool) *model.Node {
	g.dirty = true
	if n == nil || n.ID == "" {
		g.Warnf(WarnDataQuality, "node without id ignored")
		return nil
	}
	if n.Attributes == nil {
		n.Attributes = model.Attributes{}
	}
	if n.Kind == model.KindGeo {
		if geo := g.GeoNode(); geo != nil && geo.ID != n.ID {
			if _, taken := g.nodes[n.ID]; !taken {
				g.replaceGeo(geo, n)
				return n
			}
		}
	}
	if existing, ok := g.nodes[n.ID]; ok {
		if !overwrite {
			return existing
		}
		if existing.Kind == model.KindGeo && n.Kind != model.KindGeo {
			g.Warnf(WarnDataQuality, "geo reference node %s cannot be replaced by %s", n.ID, n.Kind)
			return existing
		}
		g.Warnf(WarnOverwrite, "node %s (%s) replaced by %s", n.ID, existing.Kind, n.Kind)
		g.nodes[n.ID] = n
		return n
	}
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)
	return n
}

// AddEdge inserts a directed edge of type et from source to target.
//
// Returns an error with code MISSING_ENDPOINT when either endpoint is not in
// the graph, DUPLICATE_EDGE when id is taken, and INVALID_ID when id is
// empty. When the rule table disallows et for the endpoint kinds the edge is
// still created, retyped to the generic fallback, and exactly one rule
// violation warning is recorded; the requested type is kept in the edge
// attribute "downgraded_from".
func (g *Graph) AddEdge(id, source, target string, et model.EdgeType) (*model.Edge, error) {
	g.dirty = true
	if id == "" {
		return nil, errors.New(errors.ErrCodeInvalidID, "edge id cannot be empty")
	}
	src, ok := g.nodes[source]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingEndpoint, "edge %s: unknown source node %q", id, source)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingEndpoint, "edge %s: unknown target node %q", id, target)
	}
	if _, ok := g.edges[id]; ok {
		return nil, errors.New(errors.ErrCodeDuplicateEdge, "edge %s already exists", id)
	}

	e := &model.Edge{ID: id, Source: source, Target: target, Type: et, Attributes: model.Attributes{}}
	g.enforceRule(e, src, dst)
	g.edges[id] = e
	g.edgeOrder = append(g.edgeOrder, id)
	return e, nil
}

// enforceRule downgrades e to the fallback type when its type is not
// allowed between src and dst.
func (g *Graph) enforceRule(e *model.Edge, src, dst *model.Node) {
	if e.Type == model.EdgeGeneric || g.rules.ValidateConnection(src.Kind, dst.Kind, e.Type) {
		return
	}
	g.Warnf(WarnRuleViolation, "edge %s: %s not allowed from %s (%s) to %s (%s), downgraded to %s",
		e.ID, e.Type, src.ID, src.Kind, dst.ID, dst.Kind, model.EdgeGeneric)
	e.Attributes[model.AttrDowngradedFrom] = string(e.Type)
	e.Type = model.EdgeGeneric
}

// replaceGeo swaps the geo reference node old for n, moving its edges.
func (g *Graph) replaceGeo(old, n *model.Node) {
	g.Warnf(WarnOverwrite, "geo reference node %s replaced by %s", old.ID, n.ID)
	delete(g.nodes, old.ID)
	g.nodes[n.ID] = n
	g.nodeOrder[slices.Index(g.nodeOrder, old.ID)] = n.ID
	for _, e := range g.edges {
		if e.Source == old.ID {
			e.Source = n.ID
		}
		if e.Target == old.ID {
			e.Target = n.ID
		}
	}
}

// RemoveNode deletes the node and every edge incident to it, in both
// directions. Returns NOT_FOUND when the node does not exist and
// INVALID_INPUT for the geo reference node, which every graph keeps.
func (g *Graph) RemoveNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	if n.Kind == model.KindGeo {
		return errors.New(errors.ErrCodeInvalidInput, "geo reference node %s cannot be removed", id)
	}
	g.dirty = true
	delete(g.nodes, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(s string) bool { return s == id })
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(eid string) bool {
		if g.edges[eid].Touches(id) {
			delete(g.edges, eid)
			return true
		}
		return false
	})
	return nil
}

// RemoveEdge deletes a single edge. Returns NOT_FOUND when it does not exist.
func (g *Graph) RemoveEdge(id string) error {
	if _, ok := g.edges[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %s not found", id)
	}
	g.dirty = true
	delete(g.edges, id)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool { return s == id })
	return nil
}

// NodePatch describes a partial node update. Nil fields are left alone; an
// attribute set to nil is deleted.
type NodePatch struct {
	Name        *string
	Description *string
	Attributes  map[string]any
}

// UpdateNode applies patch to the node. Returns NOT_FOUND for unknown ids.
func (g *Graph) UpdateNode(id string, patch NodePatch) error {
	n, ok := g.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	g.dirty = true
	if patch.Name != nil {
		n.Name = *patch.Name
	}
	if patch.Description != nil {
		n.Description = *patch.Description
	}
	applyAttributes(n.Attributes, patch.Attributes)
	return nil
}

// EdgePatch describes a partial edge update. A type change is validated
// with the same downgrade policy as AddEdge.
type EdgePatch struct {
	Type       *model.EdgeType
	Attributes map[string]any
}

// UpdateEdge applies patch to the edge. Returns NOT_FOUND for unknown ids.
func (g *Graph) UpdateEdge(id string, patch EdgePatch) error {
	e, ok := g.edges[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "edge %s not found", id)
	}
	g.dirty = true
	applyAttributes(e.Attributes, patch.Attributes)
	if patch.Type != nil && *patch.Type != e.Type {
		e.Type = *patch.Type
		delete(e.Attributes, model.AttrDowngradedFrom)
		g.enforceRule(e, g.nodes[e.Source], g.nodes[e.Target])
	}
	return nil
}

func applyAttributes(dst model.Attributes, patch map[string]any) {
	for k, v := range patch {
		if v == nil {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
}
