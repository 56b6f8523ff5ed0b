package graph_test

import (
	"fmt"

	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

func ExampleGraph_AddEdge() {
	g := graph.New("VDL16")
	g.AddNode(model.NewNode("u1", "US 1", model.KindUS), false)
	g.AddNode(model.NewNode("u2", "US 2", model.KindUS), false)
	g.AddNode(model.NewNode("d1", "D.01", model.KindDocument), false)

	ok, _ := g.AddEdge("e1", "u1", "u2", model.EdgeIsBefore)
	bad, _ := g.AddEdge("e2", "u1", "d1", model.EdgeIsBefore)

	fmt.Println(ok.Type)
	fmt.Println(bad.Type)
	fmt.Println(len(g.Warnings()))
	// Output:
	// is_before
	// generic_connection
	// 1
}

func ExampleGraph_RemoveNode() {
	g := graph.New("g")
	g.AddNode(model.NewNode("a", "a", model.KindUS), false)
	g.AddNode(model.NewNode("b", "b", model.KindUS), false)
	_, _ = g.AddEdge("e", "a", "b", model.EdgeIsBefore)

	_ = g.RemoveNode("a")
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Nodes: 2
	// Edges: 0
}
