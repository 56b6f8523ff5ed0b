// Package pkg provides the libraries of stratagraph, a knowledge graph
// engine for archaeological stratigraphy.
//
// # Overview
//
// Stratagraph turns Harris-matrix style diagrams into typed graphs: the
// stratigraphic units of an excavation or reconstruction, the paradata
// (documents, extractors, combiners, properties) that justify them, and
// the epochs they belong to. Every edge is checked against a declarative
// connection rule table; violations are kept as warnings, never errors.
//
// # Architecture
//
// The typical data flow:
//
//	yEd GraphML diagram / CSV table / export document
//	         ↓
//	    [importer/graphml], [importer/table] (build a graph)
//	         ↓
//	    [registry] (named graphs, aliases, import cache)
//	         ↓
//	    [chrono] (derive absolute time spans)
//	         ↓
//	    [export] JSON document, [render/nodelink] diagram
//
// # Main Packages
//
// [model] - Node kinds and families, payload variants, edge types and the
// static per-kind metadata table.
//
// [rules] - The connection rule table. The embedded default lives in
// rules.toml; custom tables may be TOML or YAML.
//
// [graph] - The Graph container: nodes, edges, warnings, lookups and a
// lazily rebuilt index over kinds and properties.
//
// [importer/graphml] - Reconstructs a graph from a yEd diagram, including
// epoch swimlanes, paradata groups and stable identities.
//
// [importer/table] - Imports row-shaped data as nodes with properties.
//
// [chrono] - Resolves the time span of every stratigraphic unit from
// explicit bounds and epoch membership.
//
// [registry] - Holds many graphs under ids and aliases and caches imports.
//
// [export] - The structured export document, plain or zstd-compressed,
// and the reader that turns it back into graphs.
//
// [render/nodelink] - Graphviz node-link diagrams, optionally clustered by
// epoch.
//
// ## Infrastructure
//
// [cache] - Import cache backends: null, file and Redis.
//
// [observability] - Hooks for import, cache and HTTP events.
//
// [errors] - Coded errors shared by all packages.
//
// [buildinfo] - Version information stamped at build time.
//
// # Quick Start
//
//	reg := registry.New(registry.Options{})
//	id, err := reg.LoadFile(ctx, "trench4.graphml", registry.LoadOptions{ID: "trench4"})
//	if err != nil {
//	    return err
//	}
//	g, _ := reg.Get(id)
//	chrono.Propagate(g)
//	for _, w := range g.Warnings() {
//	    fmt.Println(w)
//	}
//	doc, _ := reg.Export(ctx)
//	err = export.WriteFile("site.json.zst", doc)
//
// [model]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/model
// [rules]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/rules
// [graph]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/graph
// [importer/graphml]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/importer/graphml
// [importer/table]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/importer/table
// [chrono]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/chrono
// [registry]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/registry
// [export]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/export
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stratagraph/pkg/buildinfo
package pkg
