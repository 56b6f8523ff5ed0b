// Package render turns stratigraphic graphs into pictures.
//
// The [nodelink] subpackage draws a graph as a Harris-matrix style
// node-link diagram through Graphviz: units keep the shapes they have in
// the source diagrams, edges keep their line styles, and epochs can be
// drawn as clusters around the units that start in them.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Epochs: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/stratagraph/pkg/render/nodelink
package render
