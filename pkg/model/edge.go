package model

// EdgeType is the relationship vocabulary. The rules table may extend it;
// the constants below are the types the engine itself produces.
type EdgeType string

// Basic types: the only ones a diagram line style can express.
const (
	EdgeIsBefore          EdgeType = "is_before"
	EdgeHasSameTime       EdgeType = "has_same_time"
	EdgeChangedFrom       EdgeType = "changed_from"
	EdgeHasDataProvenance EdgeType = "has_data_provenance"
	EdgeContrastsWith     EdgeType = "contrasts_with"
)

// Semantic types inferred from endpoint kinds or created by the importer.
const (
	EdgeHasProperty            EdgeType = "has_property"
	EdgeExtractedFrom          EdgeType = "extracted_from"
	EdgeCombines               EdgeType = "combines"
	EdgeHasFirstEpoch          EdgeType = "has_first_epoch"
	EdgeSurviveInEpoch         EdgeType = "survive_in_epoch"
	EdgeIsInActivity           EdgeType = "is_in_activity"
	EdgeIsInParadataGroup      EdgeType = "is_in_paradata_nodegroup"
	EdgeHasParadataGroup       EdgeType = "has_paradata_nodegroup"
	EdgeIsInTimeBranch         EdgeType = "is_in_timebranch"
	EdgeIsInGroup              EdgeType = "is_in_group"
	EdgeHasAuthor              EdgeType = "has_author"
	EdgeHasLinkedResource      EdgeType = "has_linked_resource"
	EdgeHasRepresentationModel EdgeType = "has_representation_model"
	EdgeHasGeoPosition         EdgeType = "has_geoposition"
)

// EdgeGeneric is the universal fallback type. It is used whenever a more
// specific type is disallowed for the endpoint kinds or unrecognised.
const EdgeGeneric EdgeType = "generic_connection"

// EdgeTypes lists the built-in vocabulary in a stable order.
var EdgeTypes = []EdgeType{
	EdgeIsBefore, EdgeHasSameTime, EdgeChangedFrom, EdgeHasDataProvenance, EdgeContrastsWith,
	EdgeHasProperty, EdgeExtractedFrom, EdgeCombines,
	EdgeHasFirstEpoch, EdgeSurviveInEpoch,
	EdgeIsInActivity, EdgeIsInParadataGroup, EdgeHasParadataGroup, EdgeIsInTimeBranch, EdgeIsInGroup,
	EdgeHasAuthor, EdgeHasLinkedResource, EdgeHasRepresentationModel, EdgeHasGeoPosition,
	EdgeGeneric,
}

// IsBuiltin reports whether t is one of the EdgeTypes constants.
func (t EdgeType) IsBuiltin() bool {
	for _, b := range EdgeTypes {
		if b == t {
			return true
		}
	}
	return false
}

// IsTemporal reports whether t attaches a node to an epoch.
func (t EdgeType) IsTemporal() bool {
	return t == EdgeHasFirstEpoch || t == EdgeSurviveInEpoch
}

// Edge is a directed, typed connection between two nodes of the same graph.
type Edge struct {
	ID         string
	Source     string
	Target     string
	Type       EdgeType
	Attributes Attributes
}

// Touches reports whether id is either endpoint of the edge.
func (e *Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// Other returns the endpoint opposite to id. The result is meaningless when
// id is not an endpoint.
func (e *Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Clone returns a copy of the edge with its own attribute map.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Attributes = e.Attributes.Clone()
	return &c
}
