package graphml

import (
	"encoding/xml"
	"strings"
)

// The types below mirror the subset of yEd GraphML the importer reads.
// Element names are matched by local name, so the y: namespace prefix used
// by yEd does not need to be declared here.

type xmlDocument struct {
	XMLName xml.Name `xml:"graphml"`
	Keys    []xmlKey `xml:"key"`
	Graph   xmlGraph `xml:"graph"`
}

type xmlKey struct {
	ID         string `xml:"id,attr"`
	For        string `xml:"for,attr"`
	AttrName   string `xml:"attr.name,attr"`
	YFilesType string `xml:"yfiles.type,attr"`
}

type xmlGraph struct {
	ID    string    `xml:"id,attr"`
	Data  []xmlData `xml:"data"`
	Nodes []xmlNode `xml:"node"`
	Edges []xmlEdge `xml:"edge"`
}

type xmlNode struct {
	ID         string    `xml:"id,attr"`
	FolderType string    `xml:"yfiles.foldertype,attr"`
	Data       []xmlData `xml:"data"`
	Graph      *xmlGraph `xml:"graph"`
}

type xmlEdge struct {
	ID     string    `xml:"id,attr"`
	Source string    `xml:"source,attr"`
	Target string    `xml:"target,attr"`
	Data   []xmlData `xml:"data"`
}

type xmlData struct {
	Key  string `xml:"key,attr"`
	Text string `xml:",chardata"`

	ShapeNode   *xmlShape     `xml:"ShapeNode"`
	GenericNode *xmlShape     `xml:"GenericNode"`
	SVGNode     *xmlShape     `xml:"SVGNode"`
	ProxyNode   *xmlProxy     `xml:"ProxyAutoBoundsNode"`
	TableNode   *xmlTableNode `xml:"TableNode"`

	PolyLineEdge *xmlEdgeGraphics `xml:"PolyLineEdge"`
	GenericEdge  *xmlEdgeGraphics `xml:"GenericEdge"`
	ArcEdge      *xmlEdgeGraphics `xml:"ArcEdge"`
	BezierEdge   *xmlEdgeGraphics `xml:"BezierEdge"`
}

type xmlShape struct {
	Geometry   xmlGeometry   `xml:"Geometry"`
	Fill       xmlColor      `xml:"Fill"`
	Border     xmlColor      `xml:"BorderStyle"`
	Labels     []xmlLabel    `xml:"NodeLabel"`
	Shape      xmlShapeType  `xml:"Shape"`
	Properties []xmlProperty `xml:"StyleProperties>Property"`
}

type xmlGeometry struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type xmlColor struct {
	Color string `xml:"color,attr"`
	Type  string `xml:"type,attr"`
}

type xmlShapeType struct {
	Type string `xml:"type,attr"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlLabel struct {
	Text string       `xml:",chardata"`
	Row  *xmlRowParam `xml:"ModelParameter>RowNodeLabelModelParameter"`
}

type xmlRowParam struct {
	ID string `xml:"id,attr"`
}

type xmlProxy struct {
	Realizers struct {
		Active int        `xml:"active,attr"`
		Groups []xmlShape `xml:"GroupNode"`
	} `xml:"Realizers"`
}

type xmlTableNode struct {
	xmlShape
	Table xmlTable `xml:"Table"`
}

type xmlTable struct {
	Insets xmlInsets `xml:"Insets"`
	Rows   []xmlRow  `xml:"Rows>Row"`
}

type xmlInsets struct {
	Top float64 `xml:"top,attr"`
}

type xmlRow struct {
	ID     string  `xml:"id,attr"`
	Height float64 `xml:"height,attr"`
}

type xmlEdgeGraphics struct {
	LineStyle xmlColor `xml:"LineStyle"`
}

// label returns the first label text, trimmed.
func (s *xmlShape) label() string {
	for _, l := range s.Labels {
		if l.Row == nil {
			if t := strings.TrimSpace(l.Text); t != "" {
				return t
			}
		}
	}
	return ""
}

func (s *xmlShape) property(name string) string {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// group returns the realizer shown when the group is open.
func (p *xmlProxy) group() *xmlShape {
	gs := p.Realizers.Groups
	if len(gs) == 0 {
		return nil
	}
	if i := p.Realizers.Active; i >= 0 && i < len(gs) {
		return &gs[i]
	}
	return &gs[0]
}

// rowLabel returns the label attached to the given row id.
func (t *xmlTableNode) rowLabel(rowID string) string {
	for _, l := range t.Labels {
		if l.Row != nil && l.Row.ID == rowID {
			return strings.TrimSpace(l.Text)
		}
	}
	return ""
}

// nodeGraphics is the visual realizer of a node, whichever element carried it.
type nodeGraphics struct {
	element string // ShapeNode, GenericNode, SVGNode, GroupNode or TableNode
	shape   *xmlShape
	table   *xmlTableNode
}

func (n *xmlNode) graphics() (nodeGraphics, bool) {
	for i := range n.Data {
		d := &n.Data[i]
		switch {
		case d.ShapeNode != nil:
			return nodeGraphics{element: "ShapeNode", shape: d.ShapeNode}, true
		case d.GenericNode != nil:
			return nodeGraphics{element: "GenericNode", shape: d.GenericNode}, true
		case d.SVGNode != nil:
			return nodeGraphics{element: "SVGNode", shape: d.SVGNode}, true
		case d.TableNode != nil:
			return nodeGraphics{element: "TableNode", shape: &d.TableNode.xmlShape, table: d.TableNode}, true
		case d.ProxyNode != nil:
			if g := d.ProxyNode.group(); g != nil {
				return nodeGraphics{element: "GroupNode", shape: g}, true
			}
		}
	}
	return nodeGraphics{}, false
}

func (e *xmlEdge) lineStyle() (string, bool) {
	for _, d := range e.Data {
		for _, g := range []*xmlEdgeGraphics{d.PolyLineEdge, d.GenericEdge, d.ArcEdge, d.BezierEdge} {
			if g != nil {
				return g.LineStyle.Type, true
			}
		}
	}
	return "", false
}

// text returns the trimmed character data of the first data element whose
// key is in keys.
func text(data []xmlData, keys map[string]bool) string {
	for _, d := range data {
		if keys[d.Key] {
			if t := strings.TrimSpace(d.Text); t != "" {
				return t
			}
		}
	}
	return ""
}
