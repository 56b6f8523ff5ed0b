package chrono_test

import (
	"fmt"

	"github.com/matzehuels/stratagraph/pkg/chrono"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

func ExamplePropagate() {
	g := graph.New("site")
	g.AddNode(model.NewEpoch("ep", "Roman", -50, 300, "", 0, 100), false)
	g.AddNode(model.NewNode("us1", "US1", model.KindUS), false)
	_, _ = g.AddEdge("e1", "us1", "ep", model.EdgeHasFirstEpoch)

	res := chrono.Propagate(g)
	fmt.Printf("%+v\n", res.Spans["us1"])
	fmt.Println(len(chrono.InRange(g, 100, 200)))
	// Output:
	// {Start:-50 End:300 Source:epoch}
	// 1
}
