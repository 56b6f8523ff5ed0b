package export

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/stratagraph/pkg/buildinfo"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// Version is the document format version written by Build.
const Version = "1.0"

// Node categories.
const (
	CategoryAuthors         = "authors"
	CategoryStratigraphic   = "stratigraphic"
	CategoryEpochs          = "epochs"
	CategoryGroups          = "groups"
	CategoryProperties      = "properties"
	CategoryDocuments       = "documents"
	CategoryExtractors      = "extractors"
	CategoryCombiners       = "combiners"
	CategoryLinks           = "links"
	CategoryGeo             = "geo"
	CategoryRepresentations = "representations"
	CategoryOther           = "other"
)

// flatCategories are the categories keyed directly by node id, in the
// order entries are visited.
var flatCategories = []string{
	CategoryGeo, CategoryAuthors, CategoryEpochs, CategoryGroups,
	CategoryDocuments, CategoryExtractors, CategoryCombiners,
	CategoryProperties, CategoryLinks, CategoryRepresentations, CategoryOther,
}

// Categories lists every node category: the flat ones followed by
// stratigraphic.
var Categories = append(slices.Clone(flatCategories), CategoryStratigraphic)

// EdgeOther is the edge bucket for types outside the built-in vocabulary.
const EdgeOther = "other"

// Document is the top-level export document.
type Document struct {
	Version   string              `json:"version"`
	Generator string              `json:"generator,omitempty"`
	Graphs    map[string]GraphDoc `json:"graphs"`
}

// GraphDoc is one exported graph.
type GraphDoc struct {
	Name        map[string]string    `json:"name"`
	Description map[string]string    `json:"description"`
	Defaults    DefaultsDoc          `json:"defaults"`
	Nodes       NodesDoc             `json:"nodes"`
	Edges       map[string][]EdgeDoc `json:"edges"`
	Warnings    []graph.Warning      `json:"warnings,omitempty"`
}

// DefaultsDoc holds graph-wide publication settings.
type DefaultsDoc struct {
	License      string   `json:"license"`
	Authors      []string `json:"authors"`
	EmbargoUntil string   `json:"embargo_until"`
}

// NodesDoc partitions nodes by category. Stratigraphic nodes are further
// keyed by subtype.
type NodesDoc struct {
	Authors         map[string]NodeDoc            `json:"authors"`
	Stratigraphic   map[string]map[string]NodeDoc `json:"stratigraphic"`
	Epochs          map[string]NodeDoc            `json:"epochs"`
	Groups          map[string]NodeDoc            `json:"groups"`
	Properties      map[string]NodeDoc            `json:"properties"`
	Documents       map[string]NodeDoc            `json:"documents"`
	Extractors      map[string]NodeDoc            `json:"extractors"`
	Combiners       map[string]NodeDoc            `json:"combiners"`
	Links           map[string]NodeDoc            `json:"links"`
	Geo             map[string]NodeDoc            `json:"geo"`
	Representations map[string]NodeDoc            `json:"representations"`
	Other           map[string]NodeDoc            `json:"other"`
}

// NodeDoc is one exported node.
type NodeDoc struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
	Attributes  map[string]any  `json:"attributes,omitempty"`
}

// EdgeDoc is one exported edge. Type is only set in the "other" bucket.
type EdgeDoc struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func newNodesDoc() NodesDoc {
	return NodesDoc{
		Authors:         map[string]NodeDoc{},
		Stratigraphic:   map[string]map[string]NodeDoc{},
		Epochs:          map[string]NodeDoc{},
		Groups:          map[string]NodeDoc{},
		Properties:      map[string]NodeDoc{},
		Documents:       map[string]NodeDoc{},
		Extractors:      map[string]NodeDoc{},
		Combiners:       map[string]NodeDoc{},
		Links:           map[string]NodeDoc{},
		Geo:             map[string]NodeDoc{},
		Representations: map[string]NodeDoc{},
		Other:           map[string]NodeDoc{},
	}
}

// Category returns the node category a kind is exported under.
func Category(k model.Kind) string {
	switch k {
	case model.KindDocument:
		return CategoryDocuments
	case model.KindProperty:
		return CategoryProperties
	case model.KindExtractor:
		return CategoryExtractors
	case model.KindCombiner:
		return CategoryCombiners
	}
	switch k.Family() {
	case model.FamilyStrat:
		return CategoryStratigraphic
	case model.FamilyGroup:
		return CategoryGroups
	case model.FamilyEpoch:
		return CategoryEpochs
	case model.FamilyAuthor:
		return CategoryAuthors
	case model.FamilyLink:
		return CategoryLinks
	case model.FamilyGeo:
		return CategoryGeo
	case model.FamilyRepresentation:
		return CategoryRepresentations
	}
	return CategoryOther
}

// flat returns the map of a non-stratigraphic category.
func (n *NodesDoc) flat(category string) map[string]NodeDoc {
	switch category {
	case CategoryAuthors:
		return n.Authors
	case CategoryEpochs:
		return n.Epochs
	case CategoryGroups:
		return n.Groups
	case CategoryProperties:
		return n.Properties
	case CategoryDocuments:
		return n.Documents
	case CategoryExtractors:
		return n.Extractors
	case CategoryCombiners:
		return n.Combiners
	case CategoryLinks:
		return n.Links
	case CategoryGeo:
		return n.Geo
	case CategoryRepresentations:
		return n.Representations
	}
	return n.Other
}

func (n *NodesDoc) put(kind model.Kind, id string, nd NodeDoc) {
	if cat := Category(kind); cat != CategoryStratigraphic {
		m := n.flat(cat)
		if m == nil {
			m = map[string]NodeDoc{}
			n.setFlat(cat, m)
		}
		m[id] = nd
		return
	}
	if n.Stratigraphic == nil {
		n.Stratigraphic = map[string]map[string]NodeDoc{}
	}
	sub := n.Stratigraphic[string(kind)]
	if sub == nil {
		sub = map[string]NodeDoc{}
		n.Stratigraphic[string(kind)] = sub
	}
	sub[id] = nd
}

func (n *NodesDoc) setFlat(category string, m map[string]NodeDoc) {
	switch category {
	case CategoryAuthors:
		n.Authors = m
	case CategoryEpochs:
		n.Epochs = m
	case CategoryGroups:
		n.Groups = m
	case CategoryProperties:
		n.Properties = m
	case CategoryDocuments:
		n.Documents = m
	case CategoryExtractors:
		n.Extractors = m
	case CategoryCombiners:
		n.Combiners = m
	case CategoryLinks:
		n.Links = m
	case CategoryGeo:
		n.Geo = m
	case CategoryRepresentations:
		n.Representations = m
	default:
		n.Other = m
	}
}

// each calls fn for every node entry of the document.
func (n *NodesDoc) each(fn func(category, id string, nd NodeDoc)) {
	for _, cat := range flatCategories {
		m := n.flat(cat)
		for _, id := range sortedKeys(m) {
			fn(cat, id, m[id])
		}
	}
	for _, sub := range sortedKeys(n.Stratigraphic) {
		m := n.Stratigraphic[sub]
		for _, id := range sortedKeys(m) {
			fn(CategoryStratigraphic, id, m[id])
		}
	}
}

// Build exports the given graphs into one document keyed by graph id.
// Graphs sharing an id overwrite each other; the last one wins.
func Build(graphs ...*graph.Graph) Document {
	doc := Document{
		Version:   Version,
		Generator: buildinfo.Generator(),
		Graphs:    make(map[string]GraphDoc, len(graphs)),
	}
	for _, g := range graphs {
		if g == nil {
			continue
		}
		doc.Graphs[g.ID] = BuildGraph(g)
	}
	return doc
}

// BuildGraph exports a single graph.
func BuildGraph(g *graph.Graph) GraphDoc {
	gd := GraphDoc{
		Name:        copyStrings(g.Name),
		Description: copyStrings(g.Description),
		Defaults: DefaultsDoc{
			License:      g.Defaults.License,
			Authors:      append([]string{}, g.Defaults.Authors...),
			EmbargoUntil: g.Defaults.EmbargoUntil,
		},
		Nodes:    newNodesDoc(),
		Edges:    map[string][]EdgeDoc{},
		Warnings: g.Warnings(),
	}
	for _, n := range g.Nodes() {
		gd.Nodes.put(n.Kind, n.ID, nodeDoc(n))
	}
	for _, e := range g.Edges() {
		ed := EdgeDoc{ID: e.ID, From: e.Source, To: e.Target}
		if len(e.Attributes) > 0 {
			ed.Attributes = map[string]any(e.Attributes.Clone())
		}
		bucket := string(e.Type)
		if !e.Type.IsBuiltin() {
			bucket = EdgeOther
			ed.Type = string(e.Type)
		}
		gd.Edges[bucket] = append(gd.Edges[bucket], ed)
	}
	return gd
}

func nodeDoc(n *model.Node) NodeDoc {
	nd := NodeDoc{Type: string(n.Kind), Name: n.Name, Description: n.Description}
	if n.Payload != nil {
		// Payloads are plain structs of strings and numbers.
		if data, err := json.Marshal(n.Payload); err == nil {
			nd.Data = data
		}
	}
	if len(n.Attributes) > 0 {
		nd.Attributes = map[string]any(n.Attributes.Clone())
	}
	return nd
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
