// Package export serializes graphs into a categorized, versioned JSON
// document and reads such documents back.
//
// # Document layout
//
//	{
//	  "version": "1.0",
//	  "generator": "stratagraph/v1.0.0",
//	  "graphs": {
//	    "VDL16": {
//	      "name": {"en": "Villa del Lago"},
//	      "description": {},
//	      "defaults": {"license": "CC-BY-4.0", "authors": ["..."], "embargo_until": ""},
//	      "nodes": {
//	        "authors": {...},
//	        "stratigraphic": {"US": {"<id>": {...}}, "USVs": {...}},
//	        "epochs": {...}, "groups": {...}, "properties": {...},
//	        "documents": {...}, "extractors": {...}, "combiners": {...},
//	        "links": {...}, "geo": {...}, "representations": {...},
//	        "other": {...}
//	      },
//	      "edges": {"is_before": [{"id": "...", "from": "...", "to": "..."}], "other": [...]},
//	      "warnings": [...]
//	    }
//	  }
//	}
//
// Each node entry carries its kind, name, description, kind-specific data
// and open attributes. Nodes of unknown kinds land in "other"; edges whose
// type is not part of the built-in vocabulary land in the "other" edge
// bucket with their type kept. Exporting never fails on unrecognized
// content.
//
// Files ending in ".zst" are written zstd-compressed. [Read] detects
// compression from the content, so compressed and plain documents are read
// the same way.
package export
