package model

import (
	"maps"
	"strconv"
)

// TimeSentinel replaces open or placeholder time bounds ("XX" in a diagram).
// It is far enough in the future to behave as "still ongoing".
const TimeSentinel = 10000.0

// Attributes stores kind-agnostic metadata attached to a node or edge.
// Values are scalars by convention (string, float64, int, bool).
type Attributes map[string]any

// Well-known attribute keys.
const (
	AttrY                = "y"                  // diagram center y position
	AttrX                = "x"                  // diagram center x position
	AttrFill             = "fill_color"         // diagram fill color
	AttrBorder           = "border_color"       // diagram border color
	AttrShape            = "shape"              // diagram shape type
	AttrOriginalID       = "original_id"        // diagram-native id
	AttrStartTime        = "start_time"         // explicit start bound
	AttrEndTime          = "end_time"           // explicit end bound
	AttrDerivedStart     = "derived_start_time" // written by chrono
	AttrDerivedEnd       = "derived_end_time"   // written by chrono
	AttrChronologySource = "chronology_source"  // "property" or "epoch"
	AttrLanguage         = "language"
	AttrDowngradedFrom   = "downgraded_from" // edge attribute: requested type
)

// Float returns the attribute as a float64. Numeric strings are parsed.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Clone returns a shallow copy. A nil map clones to an empty one.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	maps.Copy(out, a)
	return out
}

// Payload is the kind-specific part of a node. The set of implementations
// is closed: *StratInfo, *PropertyPayload, *EpochPayload, *DocumentPayload,
// *AuthorPayload, *LinkPayload, *GeoPayload and *RepresentationPayload.
type Payload interface {
	isPayload()
}

// PropertyPayload carries the value of a property node.
type PropertyPayload struct {
	Value        string `json:"value"`
	PropertyType string `json:"property_type"`
}

// EpochPayload carries the time span and diagram band of an epoch.
// The band is half-open: [MinY, MaxY).
type EpochPayload struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Color     string  `json:"color"`
	MinY      float64 `json:"min_y"`
	MaxY      float64 `json:"max_y"`
}

// Contains reports whether y falls inside the band.
func (e *EpochPayload) Contains(y float64) bool { return y >= e.MinY && y < e.MaxY }

// DocumentPayload carries optional bibliographic data of a document.
type DocumentPayload struct {
	URL  string `json:"url,omitempty"`
	Date string `json:"date,omitempty"`
}

// AuthorPayload identifies an author.
type AuthorPayload struct {
	ORCID     string `json:"orcid,omitempty"`
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

// LinkPayload points at an external resource.
type LinkPayload struct {
	URL string `json:"url"`
}

// GeoPayload is the geo reference of a graph.
type GeoPayload struct {
	EPSG   int     `json:"epsg"`
	ShiftX float64 `json:"shift_x"`
	ShiftY float64 `json:"shift_y"`
	ShiftZ float64 `json:"shift_z"`
}

// RepresentationPayload is the transform of a 3D representation model.
type RepresentationPayload struct {
	Position [3]float64 `json:"position"`
	Rotation [3]float64 `json:"rotation"`
	Scale    [3]float64 `json:"scale"`
}

func (*StratInfo) isPayload()             {}
func (*PropertyPayload) isPayload()       {}
func (*EpochPayload) isPayload()          {}
func (*DocumentPayload) isPayload()       {}
func (*AuthorPayload) isPayload()         {}
func (*LinkPayload) isPayload()           {}
func (*GeoPayload) isPayload()            {}
func (*RepresentationPayload) isPayload() {}

// Node is a typed vertex of a stratigraphic graph.
//
// The zero value is not usable: build nodes with NewNode so that Attributes
// is initialised and Payload matches Kind.
type Node struct {
	ID          string
	Name        string
	Kind        Kind
	Description string
	Attributes  Attributes
	Payload     Payload
}

// NewNode creates a node of the given kind with its payload variant.
// Unknown kinds are mapped to KindUnknown so the result is always valid.
func NewNode(id, name string, kind Kind) *Node {
	spec, ok := kindTable[kind]
	if !ok {
		kind = KindUnknown
		spec = kindTable[KindUnknown]
	}
	return &Node{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Attributes: Attributes{},
		Payload:    spec.payload(),
	}
}

// NewEpoch creates an epoch node covering [start, end] in time and
// [minY, maxY) in the diagram.
func NewEpoch(id, name string, start, end float64, color string, minY, maxY float64) *Node {
	n := NewNode(id, name, KindEpoch)
	p := n.Payload.(*EpochPayload)
	p.StartTime, p.EndTime, p.MinY, p.MaxY = start, end, minY, maxY
	if color != "" {
		p.Color = color
	}
	return n
}

// NewProperty creates a property node holding value.
func NewProperty(id, name, value string) *Node {
	n := NewNode(id, name, KindProperty)
	n.Payload.(*PropertyPayload).Value = value
	return n
}

// Family returns the family of the node's kind.
func (n *Node) Family() Family { return FamilyOf(n.Kind) }

// Strat returns the stratigraphic payload, if any.
func (n *Node) Strat() (*StratInfo, bool) {
	p, ok := n.Payload.(*StratInfo)
	return p, ok
}

// Property returns the property payload, if any.
func (n *Node) Property() (*PropertyPayload, bool) {
	p, ok := n.Payload.(*PropertyPayload)
	return p, ok
}

// Epoch returns the epoch payload, if any.
func (n *Node) Epoch() (*EpochPayload, bool) {
	p, ok := n.Payload.(*EpochPayload)
	return p, ok
}

// Document returns the document payload, if any.
func (n *Node) Document() (*DocumentPayload, bool) {
	p, ok := n.Payload.(*DocumentPayload)
	return p, ok
}

// Author returns the author payload, if any.
func (n *Node) Author() (*AuthorPayload, bool) {
	p, ok := n.Payload.(*AuthorPayload)
	return p, ok
}

// Link returns the link payload, if any.
func (n *Node) Link() (*LinkPayload, bool) {
	p, ok := n.Payload.(*LinkPayload)
	return p, ok
}

// Geo returns the geo payload, if any.
func (n *Node) Geo() (*GeoPayload, bool) {
	p, ok := n.Payload.(*GeoPayload)
	return p, ok
}

// Representation returns the representation payload, if any.
func (n *Node) Representation() (*RepresentationPayload, bool) {
	p, ok := n.Payload.(*RepresentationPayload)
	return p, ok
}

// Y returns the diagram y position, if the node has one.
func (n *Node) Y() (float64, bool) { return n.Attributes.Float(AttrY) }

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.Attributes = n.Attributes.Clone()
	c.Payload = clonePayload(n.Payload)
	return &c
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case *StratInfo:
		c := *v
		return &c
	case *PropertyPayload:
		c := *v
		return &c
	case *EpochPayload:
		c := *v
		return &c
	case *DocumentPayload:
		c := *v
		return &c
	case *AuthorPayload:
		c := *v
		return &c
	case *LinkPayload:
		c := *v
		return &c
	case *GeoPayload:
		c := *v
		return &c
	case *RepresentationPayload:
		c := *v
		return &c
	}
	return nil
}
