package graphml

import (
	"strings"

	"github.com/matzehuels/stratagraph/pkg/model"
)

// Border colors of the stratigraphic palette.
const (
	colorPhysical   = "#9B3333"
	colorStructural = "#248FE7"
	colorNonStruct  = "#31792D"
	colorFind       = "#D8BD30"
	colorVirtFind   = "#B19F61"
)

type shapeKey struct {
	shape string
	color string
}

// shapeKinds maps shape and border color to a stratigraphic kind.
var shapeKinds = map[shapeKey]model.Kind{
	{"rectangle", colorPhysical}:       model.KindUS,
	{"parallelogram", colorStructural}: model.KindUSVs,
	{"hexagon", colorNonStruct}:        model.KindUSVn,
	{"ellipse", colorPhysical}:         model.KindSeriesSU,
	{"ellipse", colorStructural}:       model.KindSeriesUSVs,
	{"ellipse", colorNonStruct}:        model.KindSeriesUSVn,
	{"octagon", colorFind}:             model.KindSF,
	{"octagon", colorVirtFind}:         model.KindVSF,
	{"roundrectangle", colorPhysical}:  model.KindUSD,
	{"diamond", colorPhysical}:         model.KindTSU,
	{"trapezoid", colorPhysical}:       model.KindEvent,
}

// shapeOnly maps shapes that identify a kind without their color. Ellipses
// and octagons are ambiguous and need the color.
var shapeOnly = map[string]model.Kind{
	"rectangle":      model.KindUS,
	"parallelogram":  model.KindUSVs,
	"hexagon":        model.KindUSVn,
	"roundrectangle": model.KindUSD,
	"diamond":        model.KindTSU,
	"trapezoid":      model.KindEvent,
}

// Markers carried by non-shape nodes.
const (
	bpmnTypeProperty = "com.yworks.bpmn.type"
	bpmnDataObject   = "ARTIFACT_TYPE_DATA_OBJECT"
	bpmnAnnotation   = "ARTIFACT_TYPE_ANNOTATION"
	continuityLabel  = "_continuity"
	extractorPrefix  = "D."
	combinerPrefix   = "C."
)

// classifyShape resolves a ShapeNode. The second result is false when the
// combination is not in the palette and the kind fell back to unknown.
func classifyShape(shape, border string) (model.Kind, bool) {
	shape = strings.ToLower(strings.TrimSpace(shape))
	border = strings.ToUpper(strings.TrimSpace(border))
	if k, ok := shapeKinds[shapeKey{shape, border}]; ok {
		return k, true
	}
	if k, ok := shapeOnly[shape]; ok {
		return k, true
	}
	return model.KindUnknown, false
}

// classify resolves the kind of a leaf node from its realizer. Markers take
// precedence over the shape table.
func classify(gfx nodeGraphics, label string) (model.Kind, bool) {
	switch gfx.element {
	case "GenericNode":
		switch gfx.shape.property(bpmnTypeProperty) {
		case bpmnDataObject:
			return model.KindDocument, true
		case bpmnAnnotation:
			return model.KindProperty, true
		}
		return model.KindUnknown, false
	case "SVGNode":
		switch {
		case label == continuityLabel:
			return model.KindContinuity, true
		case strings.HasPrefix(label, extractorPrefix):
			return model.KindExtractor, true
		case strings.HasPrefix(label, combinerPrefix):
			return model.KindCombiner, true
		}
		return model.KindUnknown, false
	case "ShapeNode":
		return classifyShape(gfx.shape.Shape.Type, gfx.shape.Border.Color)
	}
	return model.KindUnknown, false
}

// Group frame fills.
var groupKinds = map[string]model.Kind{
	"#CCFFFF": model.KindActivityGroup,
	"#FFCC99": model.KindParadataGroup,
	"#99CC00": model.KindTimeBranchGroup,
}

func classifyGroup(fill string) model.Kind {
	if k, ok := groupKinds[strings.ToUpper(strings.TrimSpace(fill))]; ok {
		return k
	}
	return model.KindGroup
}

// membershipEdge returns the edge type linking a child to its group.
func membershipEdge(group model.Kind) model.EdgeType {
	switch group {
	case model.KindActivityGroup:
		return model.EdgeIsInActivity
	case model.KindParadataGroup:
		return model.EdgeIsInParadataGroup
	case model.KindTimeBranchGroup:
		return model.EdgeIsInTimeBranch
	}
	return model.EdgeIsInGroup
}

// lineStyles maps yEd line styles to the basic edge vocabulary.
var lineStyles = map[string]model.EdgeType{
	"line":          model.EdgeIsBefore,
	"double_line":   model.EdgeHasSameTime,
	"dotted":        model.EdgeChangedFrom,
	"dashed":        model.EdgeHasDataProvenance,
	"dashed_dotted": model.EdgeContrastsWith,
}

func classifyLine(style string) (model.EdgeType, bool) {
	et, ok := lineStyles[strings.ToLower(strings.TrimSpace(style))]
	if !ok {
		return model.EdgeGeneric, false
	}
	return et, true
}

// promote re-types a basic edge from the kinds of its resolved endpoints.
// Types that need no promotion are returned unchanged.
func promote(et model.EdgeType, src, dst model.Kind) model.EdgeType {
	switch {
	case dst == model.KindLink:
		return model.EdgeHasLinkedResource
	case dst == model.KindRepresentation && src.IsStratigraphic():
		return model.EdgeHasRepresentationModel
	case src == model.KindExtractor && dst == model.KindDocument:
		return model.EdgeExtractedFrom
	case src == model.KindCombiner && dst == model.KindExtractor:
		return model.EdgeCombines
	case dst == model.KindParadataGroup && src.IsStratigraphic():
		return model.EdgeHasParadataGroup
	case dst == model.KindParadataGroup && src.IsParadata():
		return model.EdgeIsInParadataGroup
	case et == model.EdgeHasDataProvenance && src.IsStratigraphic() && dst == model.KindProperty:
		return model.EdgeHasProperty
	}
	return et
}
