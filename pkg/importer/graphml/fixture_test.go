package graphml

import (
	"fmt"
	"strings"
)

// Builders for small yEd documents. Geometry y values are chosen so the
// node center lands where the test needs it (center = y + 15).

const docHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns" xmlns:y="http://www.yworks.com/xml/graphml">
  <key attr.name="Description" attr.type="string" for="graph" id="d0"/>
  <key attr.name="description" attr.type="string" for="node" id="d5"/>
  <key for="node" id="d6" yfiles.type="nodegraphics"/>
  <key for="edge" id="d10" yfiles.type="edgegraphics"/>
  <graph edgedefault="directed" id="G">
`

const docFooter = `  </graph>
</graphml>
`

func document(parts ...string) string {
	return docHeader + strings.Join(parts, "\n") + docFooter
}

func describeData(desc string) string {
	if desc == "" {
		return ""
	}
	return fmt.Sprintf(`<data key="d5"><![CDATA[%s]]></data>`, desc)
}

func shapeNode(id, label, shape, border string, centerY float64) string {
	return fmt.Sprintf(`<node id="%s">
  <data key="d6">
    <y:ShapeNode>
      <y:Geometry height="30.0" width="90.0" x="40.0" y="%g"/>
      <y:Fill color="#FFFFFF" transparent="false"/>
      <y:BorderStyle color="%s" raised="false" type="line" width="4.0"/>
      <y:NodeLabel alignment="center" fontSize="12">%s</y:NodeLabel>
      <y:Shape type="%s"/>
    </y:ShapeNode>
  </data>
</node>`, id, centerY-15, border, label, shape)
}

func bpmnNode(id, label, bpmnType, desc string) string {
	return fmt.Sprintf(`<node id="%s">
  %s
  <data key="d6">
    <y:GenericNode configuration="com.yworks.bpmn.Artifact.withShadow">
      <y:Geometry height="55.0" width="35.0" x="500.0" y="20.0"/>
      <y:Fill color="#FFFFFFE6" transparent="false"/>
      <y:BorderStyle color="#000000" type="line" width="1.0"/>
      <y:NodeLabel>%s</y:NodeLabel>
      <y:StyleProperties>
        <y:Property class="java.awt.Color" name="com.yworks.bpmn.icon.line.color" value="#000000"/>
        <y:Property class="com.yworks.yfiles.bpmn.view.BPMNTypeEnum" name="com.yworks.bpmn.type" value="%s"/>
      </y:StyleProperties>
    </y:GenericNode>
  </data>
</node>`, id, describeData(desc), label, bpmnType)
}

func svgNode(id, label string, centerY float64) string {
	return fmt.Sprintf(`<node id="%s">
  <data key="d6">
    <y:SVGNode>
      <y:Geometry height="30.0" width="30.0" x="300.0" y="%g"/>
      <y:Fill color="#CCCCFF" transparent="false"/>
      <y:BorderStyle color="#000000" type="line" width="1.0"/>
      <y:NodeLabel>%s</y:NodeLabel>
      <y:SVGNodeProperties usingVisualBounds="true"/>
      <y:SVGModel svgBoundsPolicy="0"><y:SVGContent refid="1"/></y:SVGModel>
    </y:SVGNode>
  </data>
</node>`, id, centerY-15, label)
}

func groupNode(id, label, fill string, children ...string) string {
	return fmt.Sprintf(`<node id="%s" yfiles.foldertype="group">
  <data key="d6">
    <y:ProxyAutoBoundsNode>
      <y:Realizers active="0">
        <y:GroupNode>
          <y:Geometry height="200.0" width="300.0" x="450.0" y="0.0"/>
          <y:Fill color="%s" transparent="false"/>
          <y:BorderStyle color="#F5F5F5" type="dashed" width="1.0"/>
          <y:NodeLabel>%s</y:NodeLabel>
          <y:Shape type="roundrectangle"/>
        </y:GroupNode>
        <y:GroupNode>
          <y:Geometry height="50.0" width="50.0" x="0.0" y="0.0"/>
          <y:Fill color="#000000" transparent="false"/>
          <y:NodeLabel>closed</y:NodeLabel>
        </y:GroupNode>
      </y:Realizers>
    </y:ProxyAutoBoundsNode>
  </data>
  <graph edgedefault="directed" id="%s:">
%s
  </graph>
</node>`, id, fill, label, id, strings.Join(children, "\n"))
}

type row struct {
	id     string
	height float64
	label  string
}

// swimlane builds a table whose first band starts at y = top.
func swimlane(id, header string, top float64, rows []row, children ...string) string {
	var labels, defs strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&labels, `<y:NodeLabel alignment="center" rotationAngle="270.0">%s<y:LabelModel><y:RowNodeLabelModel offset="3.0"/></y:LabelModel><y:ModelParameter><y:RowNodeLabelModelParameter id="%s" inside="true"/></y:ModelParameter></y:NodeLabel>
`, r.label, r.id)
		fmt.Fprintf(&defs, `<y:Row height="%g" id="%s" minimumHeight="50.0"><y:Insets bottom="0.0" left="0.0" right="0.0" top="0.0"/></y:Row>
`, r.height, r.id)
	}
	return fmt.Sprintf(`<node id="%s" yfiles.foldertype="group">
  <data key="d6">
    <y:TableNode configuration="YED_TABLE_NODE">
      <y:Geometry height="500.0" width="800.0" x="0.0" y="0.0"/>
      <y:Fill color="#ECF5FF" transparent="false"/>
      <y:BorderStyle color="#000000" type="line" width="1.0"/>
      <y:NodeLabel alignment="center" fontSize="15">%s</y:NodeLabel>
      %s
      <y:Table autoResizeTable="true">
        <y:DefaultColumnInsets bottom="0.0" left="0.0" right="0.0" top="0.0"/>
        <y:DefaultRowInsets bottom="0.0" left="24.0" right="0.0" top="0.0"/>
        <y:Insets bottom="0.0" left="0.0" right="0.0" top="%g"/>
        <y:Columns><y:Column id="column_0" width="800.0"/></y:Columns>
        <y:Rows>
          %s
        </y:Rows>
      </y:Table>
    </y:TableNode>
  </data>
  <graph edgedefault="directed" id="%s:">
%s
  </graph>
</node>`, id, header, labels.String(), top, defs.String(), id, strings.Join(children, "\n"))
}

func edge(id, source, target, style string) string {
	return fmt.Sprintf(`<edge id="%s" source="%s" target="%s">
  <data key="d10">
    <y:PolyLineEdge>
      <y:Path sx="0.0" sy="0.0" tx="0.0" ty="0.0"/>
      <y:LineStyle color="#000000" type="%s" width="1.0"/>
      <y:Arrows source="none" target="standard"/>
    </y:PolyLineEdge>
  </data>
</edge>`, id, source, target, style)
}

// counter returns a deterministic id generator.
func counter(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

const siteHeader = "Villa del Lago [ID:VDL16;ORCID:0000-0001-1111-2222,0000-0002-3333-4444;license:CC-BY-4.0;embargo:2030-01-01;description:Excavation 2016]"

// site is a small but complete diagram: three epochs, a physical unit at
// each end of the sequence, a continuity marker, a paradata group, a
// duplicated document and an activity.
//
// Bands (top = 100): Late Roman [100,200), Early Roman [200,300),
// Republican [300,400). Chronologically Republican < Early < Late.
func site() string {
	return document(
		swimlane("n0", siteHeader, 100, []row{
			{"row_0", 100, "Late Roman [start:300;end:XX;color:#FFCC00]"},
			{"row_1", 100, "Early Roman [start:-50;end:300]"},
			{"row_2", 100, "Republican [start:-200;end:-50]"},
		},
			shapeNode("n0::n0", "US1", "rectangle", "#9B3333", 150),
			shapeNode("n0::n1", "US2", "rectangle", "#9B3333", 350),
			shapeNode("n0::n2", "USV3", "parallelogram", "#248FE7", 250),
			shapeNode("n0::n3", "US4", "rectangle", "#9B3333", 350),
			svgNode("n0::n4", "_continuity", 150),
			shapeNode("n0::n5", "??", "ellipse", "#00FF00", 450),
		),
		groupNode("n1", "US1 paradata", "#FFCC99",
			bpmnNode("n1::n0", "material", "ARTIFACT_TYPE_ANNOTATION", "stone"),
			bpmnNode("n1::n1", "D.01", "ARTIFACT_TYPE_DATA_OBJECT", "https://example.org/d01"),
			svgNode("n1::n2", "D.01.01", 600),
		),
		bpmnNode("n2", "D.01", "ARTIFACT_TYPE_DATA_OBJECT", ""),
		svgNode("n3", "C.01", 600),
		groupNode("n4", "Activity A", "#CCFFFF",
			shapeNode("n4::n0", "US6", "rectangle", "#9B3333", 150),
		),
		edge("e0", "n0::n0", "n0::n2", "line"),
		edge("e1", "n0::n0", "n1", "dashed"),
		edge("e2", "n1::n2", "n1::n1", "dashed"),
		edge("e3", "n0::n2", "n2", "dashed"),
		edge("e4", "n3", "n1::n2", "line"),
		edge("e5", "n0::n3", "n0::n4", "line"),
		edge("e6", "n0::n0", "nX", "line"),
		edge("e7", "n0::n1", "n0::n0", "wavy"),
		edge("e8", "n0::n1", "n1::n0", "dashed"),
	)
}
