// Package model defines the node and edge records of a stratigraphic graph.
//
// # Overview
//
// Every node shares a header (ID, Name, Kind, Description, Attributes) and
// carries exactly one kind-specific payload. Kinds form a closed vocabulary
// grouped into families:
//
//   - [FamilyStrat]: excavation and reconstruction units (US, USVs, USVn,
//     series, special finds, documentary units, transformation units,
//     continuity markers, events and the unknown fallback)
//   - [FamilyParadata]: supporting evidence (document, property, extractor,
//     combiner)
//   - [FamilyGroup]: activity, paradata, time-branch and generic groups
//   - single-kind families for epochs, authors, links, geo references and
//     representation models
//
// Rule matching works on families: an allow-list entry naming "strat"
// accepts every stratigraphic kind. [FamilyOf] replaces subclass checks.
//
// # Constructing Nodes
//
// [NewNode] looks the kind up in a static table and attaches the right
// payload, including the symbol/label/description triple of stratigraphic
// kinds:
//
//	n := model.NewNode("a1b2", "US 101", model.KindUS)
//	info, _ := n.Strat()
//	fmt.Println(info.Label) // "Stratigraphic unit"
//
// Unrecognised kind names resolve to [KindUnknown] through [ParseKindOrUnknown].
//
// # Attributes
//
// [Attributes] is an open string-keyed map for kind-agnostic metadata such
// as the diagram position ("y"), fill color or derived chronology. It is
// never nil on nodes created by [NewNode].
package model
