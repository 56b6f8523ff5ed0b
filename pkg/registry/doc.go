// Package registry holds several named graphs side by side.
//
// A [Registry] is owned explicitly by its caller; there is no package-level
// instance. Graphs are loaded from diagrams or export documents and
// registered under their id. When an import discovers the real graph id
// only from the document content, the id the caller asked for stays
// reachable as an alias:
//
//	reg := registry.New(registry.Options{})
//	id, err := reg.Load(ctx, f, registry.LoadOptions{ID: "temp"})
//	// id == "VDL16"; reg.Get("temp") and reg.Get("VDL16") return the same graph
//
// With a cache configured, the result of an import is stored as an export
// document keyed by the BLAKE3 hash of the input bytes and of the rule
// table, so loading the same file twice parses it once.
package registry
