package graph

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// sample builds: u1 -is_before-> u2, u1 -has_property-> p1, u2 -has_first_epoch-> ep.
func sample(t *testing.T) *Graph {
	t.Helper()
	g := New("test")
	g.AddNode(model.NewNode("u1", "US 1", model.KindUS), false)
	g.AddNode(model.NewNode("u2", "US 2", model.KindUSVs), false)
	g.AddNode(model.NewProperty("p1", "material", "stone"), false)
	g.AddNode(model.NewEpoch("ep", "Roman", -50, 400, "", 100, 200), false)
	mustEdge(t, g, "e1", "u1", "u2", model.EdgeIsBefore)
	mustEdge(t, g, "e2", "u1", "p1", model.EdgeHasProperty)
	mustEdge(t, g, "e3", "u2", "ep", model.EdgeHasFirstEpoch)
	return g
}

func mustEdge(t *testing.T, g *Graph, id, src, dst string, et model.EdgeType) *model.Edge {
	t.Helper()
	e, err := g.AddEdge(id, src, dst, et)
	if err != nil {
		t.Fatalf("AddEdge(%s): %v", id, err)
	}
	return e
}

func TestNewHasGeoNode(t *testing.T) {
	g := New("VDL16")
	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount = %d, want 1", g.NodeCount())
	}
	geo := g.GeoNode()
	if geo == nil || geo.ID != "geo_VDL16" || geo.Kind != model.KindGeo {
		t.Errorf("GeoNode = %+v", geo)
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	g := sample(t)
	edges := g.EdgeCount()
	orig, _ := g.Node("u1")

	got := g.AddNode(model.NewNode("u1", "replacement", model.KindSF), false)
	if got != orig {
		t.Error("AddNode without overwrite should return the existing node")
	}
	if got.Name != "US 1" || got.Kind != model.KindUS {
		t.Errorf("existing node changed: %+v", got)
	}
	if g.EdgeCount() != edges {
		t.Errorf("EdgeCount = %d, want %d", g.EdgeCount(), edges)
	}
	if len(g.Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", g.Warnings())
	}
}

func TestAddNodeOverwrite(t *testing.T) {
	g := sample(t)
	before := g.Nodes()
	g.AddNode(model.NewNode("u1", "replacement", model.KindSF), true)

	n, _ := g.Node("u1")
	if n.Name != "replacement" {
		t.Errorf("Name = %q, want replacement", n.Name)
	}
	if g.WarningCount(WarnOverwrite) != 1 {
		t.Errorf("warnings = %v", g.Warnings())
	}
	after := g.Nodes()
	if len(after) != len(before) || after[1].ID != "u1" {
		t.Error("overwrite should keep node order")
	}
}

func TestAddNodeEmptyID(t *testing.T) {
	g := New("g")
	if got := g.AddNode(model.NewNode("", "x", model.KindUS), false); got != nil {
		t.Errorf("AddNode(empty id) = %v, want nil", got)
	}
	if got := g.AddNode(nil, false); got != nil {
		t.Errorf("AddNode(nil) = %v, want nil", got)
	}
	if g.WarningCount(WarnDataQuality) != 2 {
		t.Errorf("warnings = %v", g.Warnings())
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := sample(t)
	tests := []struct {
		name     string
		id       string
		src, dst string
		code     errors.Code
	}{
		{"missing source", "x1", "nope", "u1", errors.ErrCodeMissingEndpoint},
		{"missing target", "x2", "u1", "nope", errors.ErrCodeMissingEndpoint},
		{"duplicate id", "e1", "u2", "u1", errors.ErrCodeDuplicateEdge},
		{"empty id", "", "u2", "u1", errors.ErrCodeInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddEdge(tt.id, tt.src, tt.dst, model.EdgeIsBefore)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
	if g.EdgeCount() != 3 {
		t.Errorf("failed AddEdge must not insert, EdgeCount = %d", g.EdgeCount())
	}
}

func TestAddEdgeDowngrade(t *testing.T) {
	g := sample(t)
	g.AddNode(model.NewNode("d1", "D.01", model.KindDocument), false)

	for i, et := range []model.EdgeType{model.EdgeIsBefore, model.EdgeHasFirstEpoch, model.EdgeType("made_up")} {
		before := len(g.Warnings())
		e, err := g.AddEdge(fmt.Sprintf("bad%d", i), "u1", "d1", et)
		if err != nil {
			t.Fatalf("AddEdge(%s) should not fail: %v", et, err)
		}
		if e.Type != model.EdgeGeneric {
			t.Errorf("Type = %s, want %s", e.Type, model.EdgeGeneric)
		}
		if e.Attributes.String(model.AttrDowngradedFrom) != string(et) {
			t.Errorf("downgraded_from = %v", e.Attributes[model.AttrDowngradedFrom])
		}
		ws := g.Warnings()
		if len(ws) != before+1 || ws[len(ws)-1].Kind != WarnRuleViolation {
			t.Errorf("want exactly one new rule violation, got %v", ws[before:])
		}
	}
}

func TestAddEdgeAllowedKeepsType(t *testing.T) {
	g := sample(t)
	e, _ := g.Edge("e2")
	if e.Type != model.EdgeHasProperty {
		t.Errorf("Type = %s", e.Type)
	}
	if len(g.Warnings()) != 0 {
		t.Errorf("warnings = %v", g.Warnings())
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := sample(t)
	if err := g.RemoveNode("u1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Node("u1"); ok {
		t.Error("node still present")
	}
	for _, e := range g.Edges() {
		if e.Touches("u1") {
			t.Errorf("dangling edge %s", e.ID)
		}
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if d := g.Validate(); len(d) != 0 {
		t.Errorf("Validate = %v", d)
	}
	if err := g.RemoveNode("u1"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second RemoveNode err = %v", err)
	}
}

func TestGeoNodeSingleton(t *testing.T) {
	g := sample(t)
	mustEdge(t, g, "eg", "u1", "geo_test", model.EdgeHasGeoPosition)

	if err := g.RemoveNode("geo_test"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RemoveNode(geo) err = %v, want INVALID_INPUT", err)
	}
	if g.GeoNode() == nil {
		t.Fatal("geo node removed")
	}

	g.AddNode(model.NewNode("site_geo", "Site datum", model.KindGeo), false)
	geos := g.NodesOfKind(model.KindGeo)
	if len(geos) != 1 || geos[0].ID != "site_geo" {
		t.Fatalf("geo nodes = %v, want [site_geo]", geos)
	}
	if g.Nodes()[0].ID != "site_geo" {
		t.Error("replacement should keep the geo node's position")
	}
	if e, _ := g.Edge("eg"); e.Target != "site_geo" {
		t.Errorf("eg target = %q, want site_geo", e.Target)
	}
	if d := g.Validate(); len(d) != 0 {
		t.Errorf("Validate = %v", d)
	}

	g.AddNode(model.NewNode("site_geo", "not a datum", model.KindUS), true)
	if n, _ := g.Node("site_geo"); n.Kind != model.KindGeo {
		t.Errorf("geo node overwritten by %s", n.Kind)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := sample(t)
	if err := g.RemoveEdge("e1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Edge("e1"); ok {
		t.Error("edge still present")
	}
	if g.NodeCount() != 5 {
		t.Errorf("RemoveEdge must not touch nodes, NodeCount = %d", g.NodeCount())
	}
	if err := g.RemoveEdge("e1"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateNode(t *testing.T) {
	g := sample(t)
	name := "US 1 (revised)"
	err := g.UpdateNode("u1", NodePatch{
		Name:       &name,
		Attributes: map[string]any{"y": 150.0, "fill_color": "#fff"},
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("u1")
	if n.Name != name {
		t.Errorf("Name = %q", n.Name)
	}
	if y, _ := n.Y(); y != 150 {
		t.Errorf("y = %v", y)
	}

	if err := g.UpdateNode("u1", NodePatch{Attributes: map[string]any{"fill_color": nil}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := n.Attributes["fill_color"]; ok {
		t.Error("nil attribute should delete the key")
	}
	if err := g.UpdateNode("zz", NodePatch{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestUpdateEdgeRevalidates(t *testing.T) {
	g := sample(t)
	bad := model.EdgeExtractedFrom
	if err := g.UpdateEdge("e1", EdgePatch{Type: &bad}); err != nil {
		t.Fatal(err)
	}
	e, _ := g.Edge("e1")
	if e.Type != model.EdgeGeneric {
		t.Errorf("Type = %s, want downgrade", e.Type)
	}
	if g.WarningCount(WarnRuleViolation) != 1 {
		t.Errorf("warnings = %v", g.Warnings())
	}

	good := model.EdgeHasSameTime
	if err := g.UpdateEdge("e1", EdgePatch{Type: &good}); err != nil {
		t.Fatal(err)
	}
	if e.Type != good {
		t.Errorf("Type = %s, want %s", e.Type, good)
	}
	if _, ok := e.Attributes[model.AttrDowngradedFrom]; ok {
		t.Error("downgraded_from should be cleared after a valid retype")
	}
}

func TestConnectedNodes(t *testing.T) {
	g := sample(t)
	tests := []struct {
		name string
		id   string
		f    Filter
		want []string
	}{
		{"all", "u1", Filter{}, []string{"u2", "p1"}},
		{"by edge type", "u1", Filter{EdgeType: model.EdgeHasProperty}, []string{"p1"}},
		{"by kind", "u1", Filter{Kind: model.KindUSVs}, []string{"u2"}},
		{"by family", "u2", Filter{Family: model.FamilyStrat}, []string{"u1"}},
		{"outgoing", "u2", Filter{Direction: Outgoing}, []string{"ep"}},
		{"incoming", "u2", Filter{Direction: Incoming}, []string{"u1"}},
		{"unknown", "nope", Filter{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, n := range g.ConnectedNodes(tt.id, tt.f) {
				got = append(got, n.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ConnectedNodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConnectedEpochs(t *testing.T) {
	g := sample(t)
	eps := g.ConnectedEpochs("u2", model.EdgeHasFirstEpoch)
	if len(eps) != 1 || eps[0].ID != "ep" {
		t.Errorf("ConnectedEpochs = %v", eps)
	}
	if eps := g.ConnectedEpochs("u2", model.EdgeSurviveInEpoch); len(eps) != 0 {
		t.Errorf("ConnectedEpochs(survive) = %v", eps)
	}
}

func TestLookups(t *testing.T) {
	g := sample(t)
	if n, ok := g.NodeByName("US 2"); !ok || n.ID != "u2" {
		t.Errorf("NodeByName = %v, %v", n, ok)
	}
	if _, ok := g.NodeByName("missing"); ok {
		t.Error("NodeByName(missing) should miss")
	}
	if _, ok := g.Edge("missing"); ok {
		t.Error("Edge(missing) should miss")
	}
	if got := len(g.EdgesOfType(model.EdgeIsBefore)); got != 1 {
		t.Errorf("EdgesOfType = %d", got)
	}
	if got := len(g.NodesOfFamily(model.FamilyStrat)); got != 2 {
		t.Errorf("NodesOfFamily = %d", got)
	}
	if got := len(g.ConnectedEdges("u1")); got != 2 {
		t.Errorf("ConnectedEdges = %d", got)
	}
	if !g.HasEdge("u1", "u2", "") || g.HasEdge("u2", "u1", "") {
		t.Error("HasEdge mismatch")
	}
}

func TestWarningsDrain(t *testing.T) {
	g := New("g")
	g.Warnf(WarnDataQuality, "missing %s", "name")
	ws := g.DrainWarnings()
	if len(ws) != 1 || ws[0].String() != "data_quality: missing name" {
		t.Errorf("DrainWarnings = %v", ws)
	}
	if len(g.Warnings()) != 0 {
		t.Error("drain should clear the log")
	}
	g.Warnf(WarnDataQuality, "again")
	g.ClearWarnings()
	if g.WarningCount("") != 0 {
		t.Error("ClearWarnings should clear the log")
	}
}

func TestDisplayName(t *testing.T) {
	g := New("VDL16")
	if g.DisplayName() != "VDL16" {
		t.Errorf("DisplayName = %q", g.DisplayName())
	}
	g.Name["it"] = "Villa"
	if g.DisplayName() != "Villa" {
		t.Errorf("DisplayName = %q", g.DisplayName())
	}
	g.Name[DefaultLanguage] = "Villa (en)"
	if g.DisplayName() != "Villa (en)" {
		t.Errorf("DisplayName = %q", g.DisplayName())
	}
}
