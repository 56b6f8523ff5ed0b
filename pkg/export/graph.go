package export

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// ToGraph rebuilds a graph from an exported entry.
//
// Node payloads are restored from their data; attributes come back with
// JSON value types (numbers as float64). An exported geo node replaces the
// implicit one. The exported warnings replace
// whatever the rebuild itself produced. An edge referencing a node the
// document does not contain fails with MALFORMED_DOCUMENT.
func ToGraph(id string, gd GraphDoc, opts ...graph.Option) (*graph.Graph, error) {
	g := graph.New(id, opts...)
	for lang, s := range gd.Name {
		g.Name[lang] = s
	}
	for lang, s := range gd.Description {
		g.Description[lang] = s
	}
	g.Defaults = graph.Defaults{
		License:      gd.Defaults.License,
		Authors:      append([]string(nil), gd.Defaults.Authors...),
		EmbargoUntil: gd.Defaults.EmbargoUntil,
	}

	var err error
	gd.Nodes.each(func(_, nid string, nd NodeDoc) {
		if err != nil {
			return
		}
		var n *model.Node
		n, err = node(nid, nd)
		if err == nil {
			g.AddNode(n, true)
		}
	})
	if err != nil {
		return nil, err
	}

	for _, bucket := range sortedKeys(gd.Edges) {
		for _, ed := range gd.Edges[bucket] {
			et := model.EdgeType(bucket)
			if bucket == EdgeOther {
				et = model.EdgeType(ed.Type)
			}
			e, err := g.AddEdge(ed.ID, ed.From, ed.To, et)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "graph %s", id)
			}
			for k, v := range ed.Attributes {
				e.Attributes[k] = v
			}
		}
	}

	g.ClearWarnings()
	for _, w := range gd.Warnings {
		g.Warnf(w.Kind, "%s", w.Message)
	}
	return g, nil
}

func node(id string, nd NodeDoc) (*model.Node, error) {
	n := model.NewNode(id, nd.Name, model.Kind(nd.Type))
	n.Description = nd.Description
	for k, v := range nd.Attributes {
		n.Attributes[k] = v
	}
	if n.Payload != nil && len(nd.Data) > 0 {
		if err := json.Unmarshal(nd.Data, n.Payload); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "node %s data", id)
		}
	}
	return n, nil
}

// Graphs rebuilds every graph of doc, in id order.
func Graphs(doc Document, opts ...graph.Option) ([]*graph.Graph, error) {
	out := make([]*graph.Graph, 0, len(doc.Graphs))
	for _, id := range sortedKeys(doc.Graphs) {
		g, err := ToGraph(id, doc.Graphs[id], opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Counts summarizes a graph entry.
type Counts struct {
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	Warnings   int            `json:"warnings"`
	ByCategory map[string]int `json:"by_category"`
}

// Count tallies the nodes and edges of a graph entry.
func (gd GraphDoc) Count() Counts {
	c := Counts{ByCategory: map[string]int{}, Warnings: len(gd.Warnings)}
	gd.Nodes.each(func(cat, _ string, _ NodeDoc) {
		c.Nodes++
		c.ByCategory[cat]++
	})
	for _, es := range gd.Edges {
		c.Edges += len(es)
	}
	return c
}

// DocCounts tallies every graph of doc, keyed by graph id.
func DocCounts(doc Document) map[string]Counts {
	out := make(map[string]Counts, len(doc.Graphs))
	for id, gd := range doc.Graphs {
		out[id] = gd.Count()
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
