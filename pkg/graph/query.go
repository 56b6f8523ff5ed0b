package graph

import (
	"maps"
	"slices"

	"github.com/matzehuels/stratagraph/pkg/model"
)

// Direction selects which incident edges a traversal follows.
type Direction int

const (
	Both Direction = iota
	Outgoing
	Incoming
)

// Filter narrows ConnectedNodes. Zero fields match everything.
type Filter struct {
	EdgeType  model.EdgeType
	Kind      model.Kind
	Family    model.Family
	Direction Direction
}

func (f Filter) matchEdge(e *model.Edge, from string) bool {
	if f.EdgeType != "" && e.Type != f.EdgeType {
		return false
	}
	switch f.Direction {
	case Outgoing:
		return e.Source == from
	case Incoming:
		return e.Target == from
	}
	return true
}

func (f Filter) matchNode(n *model.Node) bool {
	if f.Kind != "" && n.Kind != f.Kind {
		return false
	}
	if f.Family != model.FamilyNone && n.Family() != f.Family {
		return false
	}
	return true
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*model.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeByName returns the first node, in insertion order, whose name matches.
func (g *Graph) NodeByName(name string) (*model.Node, bool) {
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*model.Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// stored nodes; use UpdateNode for changes that must invalidate indices.
func (g *Graph) Nodes() []*model.Node {
	out := make([]*model.Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []*model.Edge {
	out := make([]*model.Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = g.edges[id]
	}
	return out
}

// NodeCount returns the number of nodes, including the geo reference.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// NodesOfKind returns the nodes of one kind, served by the index.
func (g *Graph) NodesOfKind(k model.Kind) []*model.Node {
	return g.Index().NodesByKind(k)
}

// NodesOfFamily returns the nodes whose kind belongs to f, in insertion order.
func (g *Graph) NodesOfFamily(f model.Family) []*model.Node {
	var out []*model.Node
	for _, id := range g.nodeOrder {
		if n := g.nodes[id]; n.Family() == f {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfType returns the edges of one type, in insertion order.
func (g *Graph) EdgesOfType(et model.EdgeType) []*model.Edge {
	var out []*model.Edge
	for _, id := range g.edgeOrder {
		if e := g.edges[id]; e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// ConnectedEdges returns every edge incident to id, in either direction.
func (g *Graph) ConnectedEdges(id string) []*model.Edge {
	var out []*model.Edge
	for _, eid := range g.edgeOrder {
		if e := g.edges[eid]; e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// ConnectedNodes returns the distinct neighbours of id reachable through
// edges accepted by f, in edge insertion order.
func (g *Graph) ConnectedNodes(id string, f Filter) []*model.Node {
	var out []*model.Node
	seen := map[string]bool{}
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if !e.Touches(id) || !f.matchEdge(e, id) {
			continue
		}
		other := e.Other(id)
		if seen[other] {
			continue
		}
		if n := g.nodes[other]; f.matchNode(n) {
			seen[other] = true
			out = append(out, n)
		}
	}
	return out
}

// ConnectedEpochs returns the epochs id points at through edges of type et.
func (g *Graph) ConnectedEpochs(id string, et model.EdgeType) []*model.Node {
	return g.ConnectedNodes(id, Filter{EdgeType: et, Kind: model.KindEpoch, Direction: Outgoing})
}

// HasEdge reports whether an edge of type et runs from source to target.
// An empty et matches any type.
func (g *Graph) HasEdge(source, target string, et model.EdgeType) bool {
	for _, e := range g.edges {
		if e.Source == source && e.Target == target && (et == "" || e.Type == et) {
			return true
		}
	}
	return false
}

// Validate checks referential integrity and returns the ids of edges whose
// endpoints do not resolve. A graph mutated only through its methods always
// returns nil.
func (g *Graph) Validate() []string {
	var dangling []string
	for _, id := range g.edgeOrder {
		e := g.edges[id]
		_, okS := g.nodes[e.Source]
		_, okT := g.nodes[e.Target]
		if !okS || !okT {
			dangling = append(dangling, id)
		}
	}
	return dangling
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
