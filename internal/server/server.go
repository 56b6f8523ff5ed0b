// Package server exposes a registry over a read-only JSON HTTP API.
//
// Routes:
//
//	GET /health
//	GET /rules                           edge types of the rule table
//	GET /graphs                          summaries of every graph
//	GET /graphs/{id}                     the graph as an export entry
//	GET /graphs/{id}/nodes?kind=US       nodes, optionally filtered by kind
//	GET /graphs/{id}/nodes/{node}        one node with its incident edges
//	GET /graphs/{id}/chronology?start=&end=
//	                                     nodes whose derived span overlaps
//	GET /graphs/{id}/diagram.{svg|dot}   node-link rendering
//
// Graph ids may be aliases. Errors are JSON objects with a code and a
// message.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stratagraph/pkg/buildinfo"
	"github.com/matzehuels/stratagraph/pkg/chrono"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/export"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
	"github.com/matzehuels/stratagraph/pkg/observability"
	"github.com/matzehuels/stratagraph/pkg/registry"
	"github.com/matzehuels/stratagraph/pkg/render/nodelink"
)

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// Render holds the defaults of diagram endpoints.
	Render nodelink.Options
}

// Server serves a registry. All registry access goes through mu; the
// engine itself is single-threaded.
type Server struct {
	mu     sync.RWMutex
	reg    *registry.Registry
	logger *log.Logger
	render nodelink.Options
	router chi.Router
}

// New wraps reg. Graphs already in reg are prepared for reading.
func New(reg *registry.Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{reg: reg, logger: opts.Logger, render: opts.Render}
	for _, g := range reg.Graphs() {
		prepare(g)
	}
	s.router = s.routes()
	return s
}

// prepare derives chronology and builds the index so that later reads
// never mutate the graph.
func prepare(g *graph.Graph) {
	chrono.Propagate(g)
	g.Index()
}

// Load imports a document into the registry while holding the write lock.
func (s *Server) Load(ctx context.Context, r io.Reader, lo registry.LoadOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.reg.Load(ctx, r, lo)
	if err != nil {
		return "", err
	}
	for _, gid := range s.reg.IDs() {
		if g, ok := s.reg.Get(gid); ok && g.IndexDirty() {
			prepare(g)
		}
	}
	return id, nil
}

// LoadFile is Load for a file path.
func (s *Server) LoadFile(ctx context.Context, path string, lo registry.LoadOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.reg.LoadFile(ctx, path, lo)
	if err != nil {
		return "", err
	}
	for _, gid := range s.reg.IDs() {
		if g, ok := s.reg.Get(gid); ok && g.IndexDirty() {
			prepare(g)
		}
	}
	return id, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Get("/rules", s.handleRules)
	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.handleGraphs)
		r.Route("/{graphID}", func(r chi.Router) {
			r.Get("/", s.withGraph(s.handleGraph))
			r.Get("/nodes", s.withGraph(s.handleNodes))
			r.Get("/nodes/{nodeID}", s.withGraph(s.handleNode))
			r.Get("/chronology", s.withGraph(s.handleChronology))
			r.Get("/diagram.{format}", s.withGraph(s.handleDiagram))
		})
	})
	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

type graphHandler func(w http.ResponseWriter, r *http.Request, g *graph.Graph)

// withGraph resolves {graphID} under the read lock.
func (s *Server) withGraph(h graphHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		id := chi.URLParam(r, "graphID")
		g, ok := s.reg.Get(id)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeNotFound, "graph %s not found", id))
			return
		}
		h(w, r, g)
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	n := s.reg.Len()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Current(),
		"graphs":  n,
	})
}

type ruleResponse struct {
	Type        model.EdgeType `json:"type"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
	Sources     []string       `json:"sources"`
	Targets     []string       `json:"targets"`
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	tbl := s.reg.Rules()
	out := []ruleResponse{}
	for _, et := range tbl.EdgeTypes() {
		rule, _ := tbl.Rule(et)
		rr := ruleResponse{Type: et, Label: rule.Label, Description: rule.Description}
		for _, m := range rule.Sources {
			rr.Sources = append(rr.Sources, m.String())
		}
		for _, m := range rule.Targets {
			rr.Targets = append(rr.Targets, m.String())
		}
		out = append(out, rr)
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": tbl.Version(), "edges": out})
}

type graphSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
	Warnings int      `json:"warnings"`
}

func (s *Server) handleGraphs(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []graphSummary{}
	for _, g := range s.reg.Graphs() {
		out = append(out, graphSummary{
			ID:       g.ID,
			Name:     g.DisplayName(),
			Aliases:  s.reg.Aliases(g.ID),
			Nodes:    g.NodeCount(),
			Edges:    g.EdgeCount(),
			Warnings: g.WarningCount(""),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request, g *graph.Graph) {
	writeJSON(w, http.StatusOK, export.BuildGraph(g))
}

type nodeResponse struct {
	ID          string           `json:"id"`
	Kind        model.Kind       `json:"kind"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Attributes  model.Attributes `json:"attributes,omitempty"`
	Payload     model.Payload    `json:"data,omitempty"`
}

type edgeResponse struct {
	ID     string         `json:"id"`
	Type   model.EdgeType `json:"type"`
	Source string         `json:"source"`
	Target string         `json:"target"`
}

func toNode(n *model.Node) nodeResponse {
	return nodeResponse{
		ID:          n.ID,
		Kind:        n.Kind,
		Name:        n.Name,
		Description: n.Description,
		Attributes:  n.Attributes,
		Payload:     n.Payload,
	}
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	nodes := g.Nodes()
	if kind := r.URL.Query().Get("kind"); kind != "" {
		k, ok := model.ParseKind(kind)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown kind %q", kind))
			return
		}
		nodes = g.Index().NodesByKind(k)
	}
	out := make([]nodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toNode(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	id := chi.URLParam(r, "nodeID")
	n, ok := g.Node(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %s not found", id))
		return
	}
	edges := []edgeResponse{}
	for _, e := range g.ConnectedEdges(id) {
		edges = append(edges, edgeResponse{ID: e.ID, Type: e.Type, Source: e.Source, Target: e.Target})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":       toNode(n),
		"edges":      edges,
		"properties": g.Index().PropertyValues(id),
	})
}

func (s *Server) handleChronology(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	start, err1 := parseBound(r, "start", -chronoOpen)
	end, err2 := parseBound(r, "end", chronoOpen)
	if err1 != nil || err2 != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "start and end must be numbers"))
		return
	}
	out := []nodeResponse{}
	for _, n := range chrono.InRange(g, start, end) {
		out = append(out, toNode(n))
	}
	writeJSON(w, http.StatusOK, out)
}

// chronoOpen stands in for a missing range bound.
const chronoOpen = 1e12

func parseBound(r *http.Request, key string, fallback float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request, g *graph.Graph) {
	format, err := nodelink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil || format == nodelink.FormatPNG {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "diagram format %q", chi.URLParam(r, "format")))
		return
	}
	opts := s.render
	q := r.URL.Query()
	if q.Has("epochs") {
		opts.Epochs = q.Get("epochs") == "true"
	}
	if q.Has("paradata") {
		opts.Paradata = q.Get("paradata") == "true"
	}
	out, err := nodelink.Render(r.Context(), nodelink.ToDOT(g, opts), format)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render diagram"))
		return
	}
	ct := "image/svg+xml"
	if format == nodelink.FormatDOT {
		ct = "text/vnd.graphviz"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(out)
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusNotAcceptable
	}
	writeJSON(w, status, map[string]string{
		"code":    string(errors.GetCode(err)),
		"message": errors.UserMessage(err),
	})
}
