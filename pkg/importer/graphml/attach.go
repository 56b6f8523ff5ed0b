package graphml

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// The passes below only read node attributes and payloads, so they work on
// any graph, not only on freshly imported ones. Each is idempotent: edges
// that already exist are not created twice.

type band struct {
	node *model.Node
	*model.EpochPayload
}

// Chronological returns the epochs of g from earliest to latest. The
// diagram's vertical order decides: bands lower on the page (larger y) come
// first. Start times only break ties between bands at the same height, so
// placeholder bounds never reorder the sequence.
func Chronological(g *graph.Graph) []*model.Node {
	bands := sortedBands(g)
	out := make([]*model.Node, len(bands))
	for i, b := range bands {
		out[i] = b.node
	}
	return out
}

func sortedBands(g *graph.Graph) []band {
	var bands []band
	for _, n := range g.NodesOfKind(model.KindEpoch) {
		if p, ok := n.Epoch(); ok {
			bands = append(bands, band{node: n, EpochPayload: p})
		}
	}
	slices.SortStableFunc(bands, func(a, b band) int {
		if c := cmp.Compare(b.MinY, a.MinY); c != 0 {
			return c
		}
		return cmp.Compare(a.StartTime, b.StartTime)
	})
	return bands
}

// bandOf returns the index of the earliest band containing n, or -1.
func bandOf(bands []band, n *model.Node) int {
	y, ok := n.Y()
	if !ok {
		return -1
	}
	for i, b := range bands {
		if b.Contains(y) {
			return i
		}
	}
	return -1
}

// continuityOf returns the continuity marker linked to n, if any.
func continuityOf(g *graph.Graph, n *model.Node) (*model.Node, bool) {
	ms := g.ConnectedNodes(n.ID, graph.Filter{Kind: model.KindContinuity})
	if len(ms) == 0 {
		return nil, false
	}
	return ms[0], true
}

// AttachEpochs links stratigraphic nodes to epochs by diagram position.
//
// A node gets has_first_epoch to every band containing its y position. When
// it is linked to a continuity marker it also gets survive_in_epoch to every
// epoch strictly between its own and the marker's. Physical units (US,
// serSU) without a marker survive into every later epoch. Continuity
// markers themselves are not attached. Returns the number of edges created.
func AttachEpochs(g *graph.Graph, newID IDGenerator) int {
	if newID == nil {
		newID = NewUUID
	}
	bands := sortedBands(g)
	if len(bands) == 0 {
		return 0
	}

	created := 0
	link := func(src, dst string, et model.EdgeType) {
		if g.HasEdge(src, dst, et) {
			return
		}
		if _, err := g.AddEdge(newID(), src, dst, et); err == nil {
			created++
		}
	}

	for _, n := range g.NodesOfFamily(model.FamilyStrat) {
		if n.Kind == model.KindContinuity {
			continue
		}
		own := bandOf(bands, n)
		if own < 0 {
			continue
		}
		y, _ := n.Y()
		for _, b := range bands {
			if b.Contains(y) {
				link(n.ID, b.node.ID, model.EdgeHasFirstEpoch)
			}
		}

		survive := func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if !bands[i].Contains(y) {
					link(n.ID, bands[i].node.ID, model.EdgeSurviveInEpoch)
				}
			}
		}
		if marker, ok := continuityOf(g, n); ok {
			end := bandOf(bands, marker)
			if end < 0 {
				g.Warnf(graph.WarnDataQuality, "node %s: continuity marker %s lies outside every epoch", n.Name, marker.ID)
				continue
			}
			survive(min(own, end)+1, max(own, end))
			continue
		}
		if n.Kind.IsPhysical() {
			survive(own+1, len(bands))
		}
	}
	return created
}

// LinkParadataGroups connects the contents of paradata groups directly to
// the stratigraphic nodes that own the group (has_paradata_nodegroup).
// Property nodes get has_property, other paradata has_data_provenance.
// Returns the number of edges created.
func LinkParadataGroups(g *graph.Graph, newID IDGenerator) int {
	if newID == nil {
		newID = NewUUID
	}
	created := 0
	for _, pg := range g.NodesOfKind(model.KindParadataGroup) {
		owners := g.ConnectedNodes(pg.ID, graph.Filter{
			EdgeType:  model.EdgeHasParadataGroup,
			Family:    model.FamilyStrat,
			Direction: graph.Incoming,
		})
		if len(owners) == 0 {
			continue
		}
		members := g.ConnectedNodes(pg.ID, graph.Filter{
			EdgeType:  model.EdgeIsInParadataGroup,
			Family:    model.FamilyParadata,
			Direction: graph.Incoming,
		})
		for _, owner := range owners {
			for _, m := range members {
				et := model.EdgeHasDataProvenance
				if m.Kind == model.KindProperty {
					et = model.EdgeHasProperty
				}
				if g.HasEdge(owner.ID, m.ID, et) {
					continue
				}
				if _, err := g.AddEdge(newID(), owner.ID, m.ID, et); err == nil {
					created++
				}
			}
		}
	}
	return created
}

// LinkDocuments gives every document whose URL (or, failing that,
// description) is an http(s) address a link node. Returns the number of
// link nodes created.
func LinkDocuments(g *graph.Graph, newID IDGenerator) int {
	if newID == nil {
		newID = NewUUID
	}
	created := 0
	for _, d := range g.NodesOfKind(model.KindDocument) {
		p, ok := d.Document()
		if !ok {
			continue
		}
		url := p.URL
		if url == "" {
			url = strings.TrimSpace(d.Description)
		}
		if errors.ValidateURL(url) != nil || strings.ContainsAny(url, " \t\n") {
			continue
		}
		if len(g.ConnectedNodes(d.ID, graph.Filter{EdgeType: model.EdgeHasLinkedResource, Direction: graph.Outgoing})) > 0 {
			continue
		}
		p.URL = url
		link := model.NewNode(newID(), url, model.KindLink)
		link.Payload.(*model.LinkPayload).URL = url
		g.AddNode(link, false)
		if _, err := g.AddEdge(newID(), d.ID, link.ID, model.EdgeHasLinkedResource); err == nil {
			created++
		}
	}
	return created
}
