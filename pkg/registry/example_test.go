package registry_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/registry"
)

func ExampleRegistry_Rename() {
	reg := registry.New(registry.Options{})
	_ = reg.Add(graph.New("trench4"), false)

	_ = reg.Rename("trench4", "VDL16", "Villa del Lago")
	g, _ := reg.Get("trench4")
	fmt.Println(g.ID, g.DisplayName())
	fmt.Println(reg.Aliases("VDL16"))

	doc, _ := reg.Export(context.Background())
	fmt.Println(len(doc.Graphs))
	// Output:
	// VDL16 Villa del Lago
	// [trench4]
	// 1
}
