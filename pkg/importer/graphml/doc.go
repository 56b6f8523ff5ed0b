// Package graphml imports stratigraphic diagrams drawn in yEd.
//
// # Diagram conventions
//
// Stratigraphic units are ShapeNodes whose shape and border color select
// the unit kind (a red rectangle is a US, a blue parallelogram a structural
// virtual unit, and so on). Paradata use markers instead of shapes: BPMN
// data objects are documents, BPMN annotations are properties, and SVG
// nodes labelled "D." or "C." are extractors and combiners. An SVG node
// labelled "_continuity" marks the end of a unit's life.
//
// Group frames become group nodes whose fill selects the group kind. A
// swimlane table lays out the epochs: every row is one epoch, and its label
// carries the time span, as in
//
//	Early Roman [start:-50;end:100;color:#FFCC00]
//
// The swimlane title may carry the graph identity:
//
//	Villa del Lago [ID:VDL16;ORCID:0000-0001-1111-2222;license:CC-BY-4.0]
//
// # Edges
//
// yEd edges only have a line style, which gives a basic type (solid lines
// are is_before, dashed lines has_data_provenance, ...). Once every node is
// known the importer re-types edges from their endpoint kinds: a dashed
// edge from a unit to a property becomes has_property, one from an
// extractor to a document becomes extracted_from.
//
// After the diagram edges, three derivation passes run. They are exported
// so they can be applied to graphs built by other means:
//
//   - [AttachEpochs] links units to epochs by vertical position
//   - [LinkParadataGroups] connects paradata group contents to their owners
//   - [LinkDocuments] creates link nodes for documents pointing at a URL
//
// # Identity
//
// Every diagram id is replaced by a generated stable id (UUIDs by default).
// The [Report] keeps both directions of the mapping. Documents with the
// same name are merged: the later diagram id becomes an alias of the first
// document so edges drawn to either copy land on the same node.
package graphml
