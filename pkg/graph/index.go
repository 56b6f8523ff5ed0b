package graph

import (
	"github.com/matzehuels/stratagraph/pkg/model"
)

// PropertyRelation records that a node owns a property through a
// has_property edge.
type PropertyRelation struct {
	Name       string
	OwnerID    string
	PropertyID string
	Value      string
}

// Index holds lookup tables derived from a graph. An Index is a snapshot:
// it is never updated in place, the graph builds a new one after mutations.
type Index struct {
	byKind    map[model.Kind][]*model.Node
	propByKey map[string][]*model.Node
	relations map[string][]PropertyRelation
	byOwner   map[string][]PropertyRelation
}

// Index returns the lookup tables, rebuilding them first when any mutation
// happened since the last build.
func (g *Graph) Index() *Index {
	if g.dirty || g.index == nil {
		g.index = buildIndex(g)
		g.dirty = false
		g.rebuilds++
	}
	return g.index
}

// IndexRebuilds returns how many times the index has been rebuilt.
func (g *Graph) IndexRebuilds() int { return g.rebuilds }

// IndexStats summarizes the state of the index cache.
type IndexStats struct {
	Rebuilds int  `json:"rebuilds"`
	Dirty    bool `json:"dirty"`
}

// IndexStats returns the rebuild counter and dirty flag without triggering
// a rebuild.
func (g *Graph) IndexStats() IndexStats {
	return IndexStats{Rebuilds: g.rebuilds, Dirty: g.IndexDirty()}
}

// IndexDirty reports whether the next Index call will rebuild.
func (g *Graph) IndexDirty() bool { return g.dirty || g.index == nil }

// buildIndex makes one pass over nodes, then one over edges.
func buildIndex(g *Graph) *Index {
	idx := &Index{
		byKind:    make(map[model.Kind][]*model.Node),
		propByKey: make(map[string][]*model.Node),
		relations: make(map[string][]PropertyRelation),
		byOwner:   make(map[string][]PropertyRelation),
	}
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		idx.byKind[n.Kind] = append(idx.byKind[n.Kind], n)
		if n.Kind == model.KindProperty {
			idx.propByKey[n.Name] = append(idx.propByKey[n.Name], n)
		}
	}
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		if e.Type != model.EdgeHasProperty {
			continue
		}
		prop, ok := g.nodes[e.Target]
		if !ok || prop.Kind != model.KindProperty {
			continue
		}
		var value string
		if p, ok := prop.Property(); ok {
			value = p.Value
		}
		rel := PropertyRelation{Name: prop.Name, OwnerID: e.Source, PropertyID: prop.ID, Value: value}
		idx.relations[prop.Name] = append(idx.relations[prop.Name], rel)
		idx.byOwner[e.Source] = append(idx.byOwner[e.Source], rel)
	}
	return idx
}

// NodesByKind returns the nodes of kind k in insertion order.
func (idx *Index) NodesByKind(k model.Kind) []*model.Node { return idx.byKind[k] }

// Kinds returns the kinds present in the graph with their counts.
func (idx *Index) Kinds() map[model.Kind]int {
	out := make(map[model.Kind]int, len(idx.byKind))
	for k, ns := range idx.byKind {
		out[k] = len(ns)
	}
	return out
}

// PropertiesNamed returns the property nodes with the given name.
func (idx *Index) PropertiesNamed(name string) []*model.Node { return idx.propByKey[name] }

// PropertyNames returns every property name in the graph, sorted.
func (idx *Index) PropertyNames() []string { return sortedKeys(idx.propByKey) }

// PropertyRelations returns who owns properties named name, and with which
// value.
func (idx *Index) PropertyRelations(name string) []PropertyRelation { return idx.relations[name] }

// PropertiesOf returns the properties owned by a node.
func (idx *Index) PropertiesOf(ownerID string) []PropertyRelation { return idx.byOwner[ownerID] }

// PropertyValues returns the properties owned by ownerID as name → value.
// When a node owns several properties with one name the first wins.
func (idx *Index) PropertyValues(ownerID string) map[string]string {
	out := make(map[string]string)
	for _, rel := range idx.byOwner[ownerID] {
		if _, ok := out[rel.Name]; !ok {
			out[rel.Name] = rel.Value
		}
	}
	return out
}

// PropertyValue returns the value of the first property named name owned
// by ownerID.
func (idx *Index) PropertyValue(ownerID, name string) (string, bool) {
	for _, rel := range idx.relations[name] {
		if rel.OwnerID == ownerID {
			return rel.Value, true
		}
	}
	return "", false
}
