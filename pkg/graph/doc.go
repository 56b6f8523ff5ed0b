// Package graph holds one stratigraphic diagram in memory.
//
// # Overview
//
// A [Graph] owns its nodes and edges, validates every edge against a
// connection rule table and keeps an accumulating warnings log. It is the
// read/write contract used by importers, exporters and front ends.
//
// # Failure Policy
//
// Structural problems are errors: an edge whose endpoint does not exist
// ([errors.ErrCodeMissingEndpoint]) or whose id is already taken
// ([errors.ErrCodeDuplicateEdge]). Domain rule violations are not: an edge
// type the rule table disallows for its endpoint kinds is downgraded to
// [model.EdgeGeneric] and a warning is recorded. Imported diagrams are often
// inconsistent and the graph must stay usable.
//
//	g := graph.New("VDL16")
//	g.AddNode(model.NewNode("u1", "US 1", model.KindUS), false)
//	g.AddNode(model.NewNode("d1", "D.01", model.KindDocument), false)
//	e, _ := g.AddEdge("e1", "u1", "d1", model.EdgeIsBefore)
//	fmt.Println(e.Type) // generic_connection
//	fmt.Println(len(g.Warnings())) // 1
//
// # Indices
//
// [Graph.Index] returns derived lookup tables (nodes by kind, property nodes
// by name, property relations). They are rebuilt lazily: every mutation marks
// them dirty and the next access rebuilds them in one linear pass.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Hosts that share a graph
// between goroutines must serialize access themselves.
//
// [errors.ErrCodeMissingEndpoint]: github.com/matzehuels/stratagraph/pkg/errors
// [errors.ErrCodeDuplicateEdge]: github.com/matzehuels/stratagraph/pkg/errors
package graph
