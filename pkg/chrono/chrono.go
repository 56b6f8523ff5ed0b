// Package chrono derives absolute time spans for stratigraphic units.
//
// Explicit bounds win: a property node named absolute_time_start or
// absolute_time_end attached with has_property, or a numeric start_time /
// end_time attribute on the unit itself. A bound without an explicit value
// is taken from the widest span of the epochs the unit is attached to via
// has_first_epoch and survive_in_epoch.
//
// Propagation is independent of the diagram importer's positional epoch
// attachment: it only reads whatever epoch edges the graph has, so it can
// run after an import, after manual edits, or on a graph read back from an
// export document.
package chrono

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// Property names carrying explicit bounds.
const (
	PropStart = "absolute_time_start"
	PropEnd   = "absolute_time_end"
)

// Values of the chronology_source attribute.
const (
	SourceProperty = "property"
	SourceEpoch    = "epoch"
)

// Span is a resolved time interval.
type Span struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Source string  `json:"source"`
}

// Overlaps reports whether s intersects [start, end], bounds included.
func (s Span) Overlaps(start, end float64) bool {
	return s.Start <= end && s.End >= start
}

// Result summarizes a propagation run.
type Result struct {
	Spans      map[string]Span `json:"spans"`
	Unresolved []string        `json:"unresolved"`
}

// Propagate resolves the span of every stratigraphic unit of g and writes
// it back as the derived_start_time, derived_end_time and chronology_source
// attributes. Units with no explicit bound and no epoch are listed in
// Result.Unresolved and lose any previously derived attributes.
// Continuity markers are skipped.
//
// Source is "property" when at least one bound came from an explicit
// value, "epoch" otherwise. A missing bound on one side is set to
// model.TimeSentinel (end) or -model.TimeSentinel (start).
func Propagate(g *graph.Graph) Result {
	res := Result{Spans: map[string]Span{}}
	idx := g.Index()
	patches := map[string]map[string]any{}
	for _, n := range g.NodesOfFamily(model.FamilyStrat) {
		if n.Kind == model.KindContinuity {
			continue
		}
		span, ok := resolve(g, idx, n)
		if !ok {
			res.Unresolved = append(res.Unresolved, n.ID)
			patches[n.ID] = map[string]any{
				model.AttrDerivedStart:     nil,
				model.AttrDerivedEnd:       nil,
				model.AttrChronologySource: nil,
			}
			continue
		}
		res.Spans[n.ID] = span
		patches[n.ID] = map[string]any{
			model.AttrDerivedStart:     span.Start,
			model.AttrDerivedEnd:       span.End,
			model.AttrChronologySource: span.Source,
		}
	}
	// Written after the walk so the index is built once.
	for id, attrs := range patches {
		_ = g.UpdateNode(id, graph.NodePatch{Attributes: attrs})
	}
	return res
}

type bound struct {
	value float64
	ok    bool
}

func resolve(g *graph.Graph, idx *graph.Index, n *model.Node) (Span, bool) {
	start := explicit(g, idx, n, PropStart, model.AttrStartTime)
	end := explicit(g, idx, n, PropEnd, model.AttrEndTime)
	source := SourceEpoch
	if start.ok || end.ok {
		source = SourceProperty
	}
	if !start.ok || !end.ok {
		es, ee := epochSpan(g, n)
		if !start.ok && es.ok {
			start = es
		}
		if !end.ok && ee.ok {
			end = ee
		}
	}
	if !start.ok && !end.ok {
		return Span{}, false
	}
	if !start.ok {
		start.value = -model.TimeSentinel
	}
	if !end.ok {
		end.value = model.TimeSentinel
	}
	return Span{Start: start.value, End: end.value, Source: source}, true
}

// explicit reads a bound from a property node first, then from an
// attribute. Non-numeric values are reported once as data-quality warnings.
func explicit(g *graph.Graph, idx *graph.Index, n *model.Node, prop, attr string) bound {
	if raw, ok := idx.PropertyValue(n.ID, prop); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return bound{v, true}
		}
		g.Warnf(graph.WarnDataQuality, "node %s: %s %q is not a number", n.Name, prop, raw)
	}
	if v, ok := n.Attributes.Float(attr); ok {
		return bound{v, true}
	}
	return bound{}
}

// epochSpan returns the earliest start and latest end over the epochs n
// is attached to.
func epochSpan(g *graph.Graph, n *model.Node) (start, end bound) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, et := range []model.EdgeType{model.EdgeHasFirstEpoch, model.EdgeSurviveInEpoch} {
		for _, ep := range g.ConnectedEpochs(n.ID, et) {
			p, ok := ep.Epoch()
			if !ok {
				continue
			}
			lo = min(lo, p.StartTime)
			hi = max(hi, p.EndTime)
		}
	}
	if math.IsInf(lo, 1) {
		return bound{}, bound{}
	}
	return bound{lo, true}, bound{hi, true}
}

// SpanOf reads the derived span written by Propagate.
func SpanOf(n *model.Node) (Span, bool) {
	start, okS := n.Attributes.Float(model.AttrDerivedStart)
	end, okE := n.Attributes.Float(model.AttrDerivedEnd)
	if !okS || !okE {
		return Span{}, false
	}
	return Span{Start: start, End: end, Source: n.Attributes.String(model.AttrChronologySource)}, true
}

// InRange returns the nodes whose derived span overlaps [start, end],
// bounds included, in insertion order. Run Propagate first; nodes without
// a derived span never match. Reversed bounds are swapped.
func InRange(g *graph.Graph, start, end float64) []*model.Node {
	if start > end {
		start, end = end, start
	}
	var out []*model.Node
	for _, n := range g.Nodes() {
		if s, ok := SpanOf(n); ok && s.Overlaps(start, end) {
			out = append(out, n)
		}
	}
	return out
}
