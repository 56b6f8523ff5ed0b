package graphml

import (
	"testing"

	"github.com/matzehuels/stratagraph/pkg/model"
)

func TestClassifyShape(t *testing.T) {
	tests := []struct {
		shape, color string
		want         model.Kind
		wantOK       bool
	}{
		{"rectangle", "#9B3333", model.KindUS, true},
		{"parallelogram", "#248FE7", model.KindUSVs, true},
		{"hexagon", "#31792D", model.KindUSVn, true},
		{"ellipse", "#9B3333", model.KindSeriesSU, true},
		{"ellipse", "#248fe7", model.KindSeriesUSVs, true},
		{"ellipse", "#31792D", model.KindSeriesUSVn, true},
		{"octagon", "#D8BD30", model.KindSF, true},
		{"octagon", "#B19F61", model.KindVSF, true},
		{"roundrectangle", "#9B3333", model.KindUSD, true},
		{"diamond", "#9B3333", model.KindTSU, true},
		{"trapezoid", "#9B3333", model.KindEvent, true},
		{"Rectangle", "#000000", model.KindUS, true},
		{"hexagon", "", model.KindUSVn, true},
		{"ellipse", "#000000", model.KindUnknown, false},
		{"octagon", "#9B3333", model.KindUnknown, false},
		{"star5", "#9B3333", model.KindUnknown, false},
	}
	for _, tt := range tests {
		got, ok := classifyShape(tt.shape, tt.color)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("classifyShape(%q, %q) = %s, %v, want %s, %v", tt.shape, tt.color, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClassifyMarkers(t *testing.T) {
	bpmn := func(v string) nodeGraphics {
		return nodeGraphics{element: "GenericNode", shape: &xmlShape{
			Properties: []xmlProperty{{Name: bpmnTypeProperty, Value: v}},
		}}
	}
	svg := nodeGraphics{element: "SVGNode", shape: &xmlShape{}}
	tests := []struct {
		name  string
		gfx   nodeGraphics
		label string
		want  model.Kind
	}{
		{"data object", bpmn(bpmnDataObject), "D.01", model.KindDocument},
		{"annotation", bpmn(bpmnAnnotation), "material", model.KindProperty},
		{"other bpmn", bpmn("GATEWAY_TYPE_PLAIN"), "x", model.KindUnknown},
		{"continuity", svg, "_continuity", model.KindContinuity},
		{"extractor", svg, "D.01.01", model.KindExtractor},
		{"combiner", svg, "C.01", model.KindCombiner},
		{"plain svg", svg, "logo", model.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := classify(tt.gfx, tt.label); got != tt.want {
				t.Errorf("classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyGroup(t *testing.T) {
	tests := map[string]model.Kind{
		"#CCFFFF": model.KindActivityGroup,
		"#ffcc99": model.KindParadataGroup,
		"#99CC00": model.KindTimeBranchGroup,
		"#F5F5F5": model.KindGroup,
		"":        model.KindGroup,
	}
	for fill, want := range tests {
		if got := classifyGroup(fill); got != want {
			t.Errorf("classifyGroup(%q) = %s, want %s", fill, got, want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		style  string
		want   model.EdgeType
		wantOK bool
	}{
		{"line", model.EdgeIsBefore, true},
		{"double_line", model.EdgeHasSameTime, true},
		{"dotted", model.EdgeChangedFrom, true},
		{"dashed", model.EdgeHasDataProvenance, true},
		{"dashed_dotted", model.EdgeContrastsWith, true},
		{"wavy", model.EdgeGeneric, false},
		{"", model.EdgeGeneric, false},
	}
	for _, tt := range tests {
		got, ok := classifyLine(tt.style)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("classifyLine(%q) = %s, %v", tt.style, got, ok)
		}
	}
}

func TestPromote(t *testing.T) {
	tests := []struct {
		et       model.EdgeType
		src, dst model.Kind
		want     model.EdgeType
	}{
		{model.EdgeHasDataProvenance, model.KindUS, model.KindProperty, model.EdgeHasProperty},
		{model.EdgeIsBefore, model.KindUS, model.KindProperty, model.EdgeIsBefore},
		{model.EdgeHasDataProvenance, model.KindExtractor, model.KindDocument, model.EdgeExtractedFrom},
		{model.EdgeIsBefore, model.KindCombiner, model.KindExtractor, model.EdgeCombines},
		{model.EdgeHasDataProvenance, model.KindUSVs, model.KindParadataGroup, model.EdgeHasParadataGroup},
		{model.EdgeGeneric, model.KindDocument, model.KindParadataGroup, model.EdgeIsInParadataGroup},
		{model.EdgeIsBefore, model.KindDocument, model.KindLink, model.EdgeHasLinkedResource},
		{model.EdgeIsBefore, model.KindSF, model.KindRepresentation, model.EdgeHasRepresentationModel},
		{model.EdgeIsBefore, model.KindUS, model.KindUSVs, model.EdgeIsBefore},
	}
	for _, tt := range tests {
		if got := promote(tt.et, tt.src, tt.dst); got != tt.want {
			t.Errorf("promote(%s, %s, %s) = %s, want %s", tt.et, tt.src, tt.dst, got, tt.want)
		}
	}
}
