package nodelink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/stratagraph/pkg/chrono"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the kind and derived time span to node labels.
	Detailed bool
	// Paradata includes paradata nodes (documents, properties, extractors,
	// combiners) and their edges.
	Paradata bool
	// Epochs draws one cluster per epoch around the units whose first
	// epoch it is.
	Epochs bool
	// RankDir is the Graphviz rank direction. Empty means "BT", which puts
	// the most recent units at the top when is_before points upwards.
	RankDir string
}

type nodeStyle struct {
	shape string
	fill  string
	font  string
	style string
}

var kindStyles = map[model.Kind]nodeStyle{
	model.KindUS:         {shape: "box", fill: "white"},
	model.KindUSVs:       {shape: "parallelogram", fill: "black", font: "white"},
	model.KindUSVn:       {shape: "hexagon", fill: "black", font: "white"},
	model.KindSeriesSU:   {shape: "ellipse", fill: "white"},
	model.KindSeriesUSVs: {shape: "ellipse", fill: "black", font: "white"},
	model.KindSeriesUSVn: {shape: "ellipse", fill: "black", font: "white"},
	model.KindSF:         {shape: "octagon", fill: "white"},
	model.KindVSF:        {shape: "octagon", fill: "black", font: "white"},
	model.KindUSD:        {shape: "box", fill: "white", style: "rounded,filled"},
	model.KindTSU:        {shape: "diamond", fill: "white"},
	model.KindContinuity: {shape: "rect", fill: "black", font: "white"},
	model.KindEvent:      {shape: "trapezium", fill: "white"},
	model.KindUnknown:    {shape: "box", fill: "lightgrey"},
	model.KindDocument:   {shape: "note", fill: "lightyellow"},
	model.KindProperty:   {shape: "box", fill: "white", style: "rounded,filled,dashed"},
	model.KindExtractor:  {shape: "circle", fill: "lightblue"},
	model.KindCombiner:   {shape: "doublecircle", fill: "lightblue"},
}

var edgeStyles = map[model.EdgeType]string{
	model.EdgeIsBefore:          "",
	model.EdgeHasSameTime:       `color="black:black"`,
	model.EdgeChangedFrom:       "style=dotted",
	model.EdgeHasDataProvenance: "style=dashed",
	model.EdgeContrastsWith:     "style=dashed, color=red",
	model.EdgeHasProperty:       "style=dashed, arrowhead=none",
	model.EdgeExtractedFrom:     "style=dashed",
	model.EdgeCombines:          "style=dashed",
	model.EdgeGeneric:           "color=grey",
}

// ToDOT converts g to Graphviz DOT source. Only stratigraphic nodes are
// drawn unless opts.Paradata is set; edges are drawn when both of their
// endpoints are.
func ToDOT(g *graph.Graph, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "BT"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.ID)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	drawn := map[string]bool{}
	var nodes []*model.Node
	for _, n := range g.Nodes() {
		if included(n.Kind, opts) {
			drawn[n.ID] = true
			nodes = append(nodes, n)
		}
	}

	clusters := map[string][]*model.Node{}
	if opts.Epochs {
		for _, n := range nodes {
			if eps := g.ConnectedEpochs(n.ID, model.EdgeHasFirstEpoch); len(eps) > 0 {
				clusters[eps[0].ID] = append(clusters[eps[0].ID], n)
			}
		}
	}
	clustered := map[string]bool{}
	for i, epID := range slices.Sorted(maps.Keys(clusters)) {
		ep, _ := g.Node(epID)
		color := "#FFFFFF"
		if p, ok := ep.Epoch(); ok {
			color = p.Color
		}
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n    style=filled;\n    fillcolor=%q;\n    color=grey;\n", ep.Name, color)
		for _, n := range clusters[epID] {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
			clustered[n.ID] = true
		}
		buf.WriteString("  }\n")
	}

	for _, n := range nodes {
		if !clustered[n.ID] {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if !drawn[e.Source] || !drawn[e.Target] {
			continue
		}
		if style := edgeStyles[e.Type]; style != "" {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, style)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func included(k model.Kind, opts Options) bool {
	switch k.Family() {
	case model.FamilyStrat:
		return true
	case model.FamilyParadata:
		return opts.Paradata
	}
	return false
}

func fmtLabel(n *model.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{label, string(n.Kind)}
	if span, ok := chrono.SpanOf(n); ok {
		parts = append(parts, fmt.Sprintf("%g .. %g", span.Start, span.End))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *model.Node, detailed bool) []string {
	st, ok := kindStyles[n.Kind]
	if !ok {
		st = kindStyles[model.KindUnknown]
	}
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed)), "shape=" + st.shape}
	fill := st.fill
	if c := n.Attributes.String(model.AttrFill); c != "" && n.Kind == model.KindUS {
		fill = c
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	if st.font != "" {
		attrs = append(attrs, "fontcolor="+st.font)
	}
	if st.style != "" {
		attrs = append(attrs, fmt.Sprintf("style=%q", st.style))
	}
	if n.Kind == model.KindContinuity {
		attrs = append(attrs, "height=0.1", "width=0.6", "fixedsize=true")
	}
	return attrs
}
