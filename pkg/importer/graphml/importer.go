package graphml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
	"github.com/matzehuels/stratagraph/pkg/rules"
)

// IDGenerator returns a fresh stable identifier on every call.
type IDGenerator func() string

// NewUUID generates random (version 4) UUIDs.
func NewUUID() string { return uuid.NewString() }

// Options configures an import.
type Options struct {
	// GraphID is used when the document carries no ID annotation.
	// Empty means "graph_" plus a short generated suffix.
	GraphID string
	// Rules validates the imported edges. Nil uses the embedded table.
	Rules *rules.Table
	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
	// IDGenerator produces stable node and edge ids. Nil uses NewUUID.
	IDGenerator IDGenerator
	// Language keys the graph name and description. Empty means "en".
	Language string
}

func (o *Options) setDefaults() {
	if o.Rules == nil {
		o.Rules = rules.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.IDGenerator == nil {
		o.IDGenerator = NewUUID
	}
	if o.Language == "" {
		o.Language = graph.DefaultLanguage
	}
}

// Report describes one import run.
type Report struct {
	GraphID     string `json:"graph_id"`
	Placeholder string `json:"placeholder,omitempty"`
	// Discovered is true when GraphID came from the document itself.
	Discovered bool `json:"discovered"`

	// NativeIDs maps every stable id back to the diagram id it came from.
	NativeIDs map[string]string `json:"native_ids"`
	// StableIDs maps diagram node ids to stable ids, aliases included.
	StableIDs map[string]string `json:"stable_ids"`
	// EdgeIDs maps diagram edge ids to stable edge ids.
	EdgeIDs map[string]string `json:"edge_ids"`
	// Aliases lists the diagram ids of duplicate documents and the
	// canonical stable id they resolve to.
	Aliases map[string]string `json:"aliases"`

	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	Epochs       int `json:"epochs"`
	Groups       int `json:"groups"`
	SkippedEdges int `json:"skipped_edges"`

	Warnings []graph.Warning `json:"warnings"`
}

// Import reads a yEd GraphML diagram from r and builds a graph from it.
//
// Only documents that cannot be read or parsed as XML fail, with code
// MALFORMED_DOCUMENT. Every other problem (unknown shapes, bad time labels,
// dangling edges, disallowed connections) degrades to a default and is
// recorded as a graph warning.
func Import(r io.Reader, opts Options) (*graph.Graph, *Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "read diagram")
	}
	return Parse(data, opts)
}

// ImportFile imports the diagram stored at path.
func ImportFile(path string, opts Options) (*graph.Graph, *Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "diagram %s", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "read %s", path)
	}
	return Parse(data, opts)
}

// Parse imports a diagram held in memory.
func Parse(data []byte, opts Options) (*graph.Graph, *Report, error) {
	opts.setDefaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errors.New(errors.ErrCodeMalformedDocument, "empty diagram")
	}
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "parse diagram")
	}

	im := newImporter(&doc, opts)
	im.run()
	return im.g, im.report, nil
}

type pendingEdge struct {
	nativeID string
	source   string
	target   string
	etype    model.EdgeType
}

type importer struct {
	doc    *xmlDocument
	opts   Options
	log    *log.Logger
	g      *graph.Graph
	report *Report

	descKeys      map[string]bool
	graphDescKeys map[string]bool
	docsByName    map[string]string
	pending       []pendingEdge
}

func newImporter(doc *xmlDocument, opts Options) *importer {
	im := &importer{
		doc:           doc,
		opts:          opts,
		log:           opts.Logger,
		descKeys:      map[string]bool{},
		graphDescKeys: map[string]bool{},
		docsByName:    map[string]string{},
		report: &Report{
			Placeholder: opts.GraphID,
			NativeIDs:   map[string]string{},
			StableIDs:   map[string]string{},
			EdgeIDs:     map[string]string{},
			Aliases:     map[string]string{},
		},
	}
	for _, k := range doc.Keys {
		if !strings.EqualFold(k.AttrName, "description") {
			continue
		}
		if k.For == "graph" {
			im.graphDescKeys[k.ID] = true
		} else {
			im.descKeys[k.ID] = true
		}
	}
	return im
}

func (im *importer) run() {
	im.createGraph()
	im.walk(im.doc.Graph.Nodes, "")
	im.collectEdges(&im.doc.Graph)
	im.log.Debug("classified diagram",
		"nodes", im.g.NodeCount(),
		"epochs", im.report.Epochs,
		"groups", im.report.Groups,
		"pending_edges", len(im.pending))

	im.resolveEdges()

	attached := AttachEpochs(im.g, im.opts.IDGenerator)
	linked := LinkParadataGroups(im.g, im.opts.IDGenerator)
	links := LinkDocuments(im.g, im.opts.IDGenerator)
	im.log.Debug("derived edges",
		"epoch_edges", attached,
		"paradata_edges", linked,
		"document_links", links)

	im.report.GraphID = im.g.ID
	im.report.Nodes = im.g.NodeCount()
	im.report.Edges = im.g.EdgeCount()
	im.report.Warnings = im.g.Warnings()
	im.log.Info("imported diagram",
		"graph", im.g.ID,
		"nodes", im.report.Nodes,
		"edges", im.report.Edges,
		"warnings", len(im.report.Warnings))
}

// =============================================================================
// Graph identity
// =============================================================================

// header finds the first swimlane title carrying an ID annotation, then
// the graph-level description. Without an ID anywhere the first annotated
// header is used, so its metadata still applies.
func (im *importer) header() (title string, ann Annotation) {
	var fallbackTitle string
	var fallback Annotation
	consider := func(t string, a Annotation) bool {
		if _, ok := a.Get("id"); ok {
			title, ann = t, a
			return true
		}
		if fallback == nil && len(a) > 0 {
			fallbackTitle, fallback = t, a
		}
		return false
	}

	var walk func(nodes []xmlNode) bool
	walk = func(nodes []xmlNode) bool {
		for i := range nodes {
			xn := &nodes[i]
			if gfx, ok := xn.graphics(); ok && gfx.table != nil {
				if consider(ParseAnnotation(gfx.shape.label())) {
					return true
				}
			}
			if xn.Graph != nil && walk(xn.Graph.Nodes) {
				return true
			}
		}
		return false
	}
	if walk(im.doc.Graph.Nodes) {
		return title, ann
	}
	if d := text(im.doc.Graph.Data, im.graphDescKeys); d != "" && consider(ParseAnnotation(d)) {
		return title, ann
	}
	return fallbackTitle, fallback
}

func (im *importer) createGraph() {
	title, ann := im.header()
	id, _ := ann.Get("id")
	discovered := id != ""
	var invalid error
	if discovered {
		if invalid = errors.ValidateID(id); invalid != nil {
			discovered = false
		}
	}
	if !discovered {
		id = im.opts.GraphID
		if id == "" {
			id = "graph_" + shortID(im.opts.IDGenerator())
		}
	}

	g := graph.New(id, graph.WithRules(im.opts.Rules))
	im.g = g
	im.report.Discovered = discovered
	lang := im.opts.Language

	switch {
	case invalid != nil:
		g.Warnf(graph.WarnDataQuality, "graph ID annotation rejected (%v), using %s", invalid, id)
	case !discovered:
		g.Warnf(graph.WarnDataQuality, "no graph ID annotation found, using %s", id)
	}

	name, _ := ann.Get("name")
	if name == "" {
		name = title
	}
	if name == "" && !discovered {
		name = "Untitled"
	}
	if name != "" {
		g.Name[lang] = name
	}
	if d, ok := ann.Get("description"); ok && d != "" {
		g.Description[lang] = d
	}
	g.Defaults.License, _ = ann.Get("license")
	g.Defaults.EmbargoUntil, _ = ann.Get("embargo")

	// Graph-wide authors hang off the geo reference node.
	geo := g.GeoNode()
	for _, orcid := range ann.List("orcid") {
		a := model.NewNode(im.opts.IDGenerator(), orcid, model.KindAuthor)
		a.Payload.(*model.AuthorPayload).ORCID = orcid
		g.AddNode(a, false)
		g.Defaults.Authors = append(g.Defaults.Authors, a.ID)
		im.addEdge(geo.ID, a.ID, model.EdgeHasAuthor, "")
	}
}

func shortID(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// =============================================================================
// Nodes
// =============================================================================

func isFolder(xn *xmlNode) bool {
	return xn.FolderType == "group" || xn.FolderType == "folder"
}

// walk imports nodes depth-first. parent is the stable id of the enclosing
// group, empty at top level and inside swimlanes.
func (im *importer) walk(nodes []xmlNode, parent string) {
	for i := range nodes {
		xn := &nodes[i]
		gfx, ok := xn.graphics()
		switch {
		case ok && gfx.table != nil:
			im.swimlane(xn, gfx.table)
			if xn.Graph != nil {
				im.walk(xn.Graph.Nodes, parent)
			}
		case isFolder(xn):
			gid := im.group(xn, gfx, ok, parent)
			if xn.Graph != nil {
				im.walk(xn.Graph.Nodes, gid)
			}
		default:
			im.leaf(xn, gfx, ok, parent)
		}
	}
}

func (im *importer) register(native, stable string) {
	im.report.NativeIDs[stable] = native
	im.report.StableIDs[native] = stable
}

func (im *importer) alias(native, canonical string) {
	im.report.StableIDs[native] = canonical
	im.report.Aliases[native] = canonical
}

func setGeometry(n *model.Node, shape *xmlShape) {
	geo := shape.Geometry
	n.Attributes[model.AttrX] = geo.X + geo.Width/2
	n.Attributes[model.AttrY] = geo.Y + geo.Height/2
	if shape.Fill.Color != "" {
		n.Attributes[model.AttrFill] = shape.Fill.Color
	}
	if shape.Border.Color != "" {
		n.Attributes[model.AttrBorder] = shape.Border.Color
	}
	if shape.Shape.Type != "" {
		n.Attributes[model.AttrShape] = shape.Shape.Type
	}
}

func (im *importer) leaf(xn *xmlNode, gfx nodeGraphics, ok bool, parent string) {
	var label string
	if ok {
		label = gfx.shape.label()
	}
	name, ann := ParseAnnotation(label)

	kind, known := model.KindUnknown, false
	if ok {
		kind, known = classify(gfx, name)
	}
	if !known {
		im.g.Warnf(graph.WarnDataQuality, "node %s (%q): unrecognised %s, imported as %s",
			xn.ID, name, describe(gfx, ok), model.KindUnknown)
	}

	if kind == model.KindDocument && name != "" {
		if canonical, dup := im.docsByName[name]; dup {
			im.log.Debug("merged duplicate document", "name", name, "native", xn.ID, "canonical", canonical)
			im.alias(xn.ID, canonical)
			im.member(canonical, parent)
			return
		}
	}

	n := model.NewNode(im.opts.IDGenerator(), name, kind)
	n.Description = text(xn.Data, im.descKeys)
	n.Attributes[model.AttrOriginalID] = xn.ID
	if ok {
		setGeometry(n, gfx.shape)
	}
	im.annotate(n, ann)

	im.g.AddNode(n, false)
	im.register(xn.ID, n.ID)
	if kind == model.KindDocument && name != "" {
		im.docsByName[name] = n.ID
	}
	im.member(n.ID, parent)
}

func describe(gfx nodeGraphics, ok bool) string {
	switch {
	case !ok:
		return "node without graphics"
	case gfx.element == "ShapeNode":
		return fmt.Sprintf("shape %s/%s", gfx.shape.Shape.Type, gfx.shape.Border.Color)
	default:
		return strings.ToLower(gfx.element) + " marker"
	}
}

// annotate copies label annotations onto the node and fills the payload.
func (im *importer) annotate(n *model.Node, ann Annotation) {
	for _, k := range slices.Sorted(maps.Keys(ann)) {
		v := ann[k]
		switch k {
		case "start", "end":
			if !n.Kind.IsStratigraphic() {
				n.Attributes[k] = v
				continue
			}
			attr := model.AttrStartTime
			if k == "end" {
				attr = model.AttrEndTime
			}
			t, ok := parseTime(v)
			if !ok {
				im.g.Warnf(graph.WarnDataQuality, "node %s: %s time %q is not a number, ignored", n.Name, k, v)
				continue
			}
			n.Attributes[attr] = t
		default:
			n.Attributes[k] = v
		}
	}

	switch p := n.Payload.(type) {
	case *model.PropertyPayload:
		p.Value = n.Description
		if v, ok := ann.Get("value"); ok {
			p.Value = v
		}
		if t, ok := ann.Get("type"); ok && t != "" {
			p.PropertyType = t
		}
	case *model.DocumentPayload:
		p.URL, _ = ann.Get("url")
		p.Date, _ = ann.Get("date")
	}
}

// member links child to the group with the group's membership edge.
func (im *importer) member(child, group string) {
	if group == "" {
		return
	}
	gn, ok := im.g.Node(group)
	if !ok || im.g.HasEdge(child, group, "") {
		return
	}
	im.addEdge(child, group, membershipEdge(gn.Kind), "")
}

func (im *importer) group(xn *xmlNode, gfx nodeGraphics, ok bool, parent string) string {
	label, fill := "", ""
	if ok {
		label, fill = gfx.shape.label(), gfx.shape.Fill.Color
	}
	name, ann := ParseAnnotation(label)
	if name == "" {
		name = xn.ID
	}

	n := model.NewNode(im.opts.IDGenerator(), name, classifyGroup(fill))
	n.Description = text(xn.Data, im.descKeys)
	n.Attributes[model.AttrOriginalID] = xn.ID
	if ok {
		setGeometry(n, gfx.shape)
	}
	im.annotate(n, ann)

	im.g.AddNode(n, false)
	im.register(xn.ID, n.ID)
	im.report.Groups++
	im.member(n.ID, parent)
	return n.ID
}

// swimlane turns every table row into an epoch. Bands stack from the table
// top plus its header inset.
func (im *importer) swimlane(xn *xmlNode, t *xmlTableNode) {
	y := t.Geometry.Y + t.Table.Insets.Top
	for _, row := range t.Table.Rows {
		name, ann := ParseAnnotation(t.rowLabel(row.ID))
		if name == "" {
			name = row.ID
			im.g.Warnf(graph.WarnDataQuality, "swimlane %s: row %s has no label", xn.ID, row.ID)
		}
		start := im.epochTime(name, "start", ann)
		end := im.epochTime(name, "end", ann)
		color, _ := ann.Get("color")

		ep := model.NewEpoch(im.opts.IDGenerator(), name, start, end, color, y, y+row.Height)
		native := xn.ID + "/" + row.ID
		ep.Attributes[model.AttrOriginalID] = native
		im.g.AddNode(ep, false)
		im.register(native, ep.ID)
		im.report.Epochs++
		y += row.Height
	}
}

func (im *importer) epochTime(epoch, key string, ann Annotation) float64 {
	raw, _ := ann.Get(key)
	t, ok := parseTime(raw)
	if !ok {
		im.g.Warnf(graph.WarnDataQuality, "epoch %q: %s time %q replaced by %v", epoch, key, raw, model.TimeSentinel)
	}
	return t
}

// =============================================================================
// Edges
// =============================================================================

func (im *importer) collectEdges(g *xmlGraph) {
	for _, xe := range g.Edges {
		style, ok := xe.lineStyle()
		et, known := classifyLine(style)
		if !known {
			if !ok {
				style = "none"
			}
			im.g.Warnf(graph.WarnDataQuality, "edge %s: line style %q mapped to %s", xe.ID, style, et)
		}
		im.pending = append(im.pending, pendingEdge{nativeID: xe.ID, source: xe.Source, target: xe.Target, etype: et})
	}
	for i := range g.Nodes {
		if sub := g.Nodes[i].Graph; sub != nil {
			im.collectEdges(sub)
		}
	}
}

// resolveEdges runs once every node exists: endpoints are mapped to stable
// ids, basic types are promoted from the endpoint kinds, and the edges are
// inserted under the graph's connection rules.
func (im *importer) resolveEdges() {
	for _, pe := range im.pending {
		src, okS := im.report.StableIDs[pe.source]
		dst, okT := im.report.StableIDs[pe.target]
		if !okS || !okT {
			im.g.Warnf(graph.WarnDataQuality, "edge %s: endpoint %s -> %s not imported, skipped", pe.nativeID, pe.source, pe.target)
			im.report.SkippedEdges++
			continue
		}
		s, _ := im.g.Node(src)
		d, _ := im.g.Node(dst)
		et := promote(pe.etype, s.Kind, d.Kind)
		if et != pe.etype {
			im.log.Debug("promoted edge", "edge", pe.nativeID, "from", pe.etype, "to", et)
		}
		im.addEdge(src, dst, et, pe.nativeID)
	}
}

func (im *importer) addEdge(src, dst string, et model.EdgeType, native string) {
	id := im.opts.IDGenerator()
	e, err := im.g.AddEdge(id, src, dst, et)
	if err != nil {
		im.g.Warnf(graph.WarnDataQuality, "edge %s: %v", native, err)
		im.report.SkippedEdges++
		return
	}
	if native != "" {
		e.Attributes[model.AttrOriginalID] = native
		im.report.NativeIDs[id] = native
		im.report.EdgeIDs[native] = id
	}
}
