// Package nodelink renders stratigraphic graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render it:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.Render(ctx, dot, nodelink.FormatPNG)
//
// # Options
//
//   - Detailed: labels carry the kind and the derived time span
//   - Paradata: include documents, properties, extractors and combiners
//   - Epochs: group units into one cluster per first epoch
//
// # Drawing conventions
//
// Stratigraphic kinds use the shapes of the Extended Matrix notation
// (rectangle for units, parallelogram for structural virtual units, hexagon
// for non-structural ones, ellipses for series, octagons for special
// finds). Virtual kinds are filled black. Edges reuse the line style that
// encodes their type in yEd diagrams: solid for is_before, double for
// has_same_time, dotted for changed_from, dashed for has_data_provenance.
//
// Rendering runs Graphviz in-process through [github.com/goccy/go-graphviz].
package nodelink
