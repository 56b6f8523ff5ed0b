package export_test

import (
	"fmt"

	"github.com/matzehuels/stratagraph/pkg/export"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

func ExampleBuild() {
	g := graph.New("VDL16")
	g.AddNode(model.NewNode("u1", "US 1", model.KindUS), false)
	g.AddNode(model.NewNode("u2", "US 2", model.KindUS), false)
	_, _ = g.AddEdge("e1", "u1", "u2", model.EdgeIsBefore)

	doc := export.Build(g)
	gd := doc.Graphs["VDL16"]
	fmt.Println(len(gd.Nodes.Stratigraphic["US"]))
	fmt.Println(gd.Edges["is_before"][0].From, "->", gd.Edges["is_before"][0].To)
	// Output:
	// 2
	// u1 -> u2
}
