// Package table imports row-shaped data (spreadsheets, CSV exports) into a
// graph.
//
// Every row becomes one node. The id column is required; the name and
// description columns are optional. Every other non-empty cell becomes a
// property node named after its column and attached to the row's node with
// a has_property edge.
package table

import (
	"encoding/csv"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
)

// Mapping tells the importer which columns carry the node header.
type Mapping struct {
	IDColumn          string
	NameColumn        string // optional, defaults to the id
	DescriptionColumn string // optional
	// Kind of the row nodes. Empty means US.
	Kind model.Kind
	// Ignore lists columns that are neither header nor property.
	Ignore []string
}

// Options configures an import.
type Options struct {
	// Overwrite replaces property values of rows already in the graph.
	Overwrite bool
	Logger    *log.Logger
}

// Result summarizes a row import.
type Result struct {
	Rows       int `json:"rows"`
	Nodes      int `json:"nodes"`
	Properties int `json:"properties"`
	Skipped    int `json:"skipped"`
}

type columns struct {
	id, name, desc int
	props          []int
}

func (m Mapping) resolve(header []string) (columns, error) {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		return slices.IndexFunc(header, func(h string) bool { return strings.EqualFold(strings.TrimSpace(h), name) })
	}
	c := columns{id: find(m.IDColumn), name: find(m.NameColumn), desc: find(m.DescriptionColumn)}
	if c.id < 0 {
		return c, errors.New(errors.ErrCodeInvalidInput, "id column %q not found in header", m.IDColumn)
	}
	if m.NameColumn != "" && c.name < 0 {
		return c, errors.New(errors.ErrCodeInvalidInput, "name column %q not found in header", m.NameColumn)
	}
	if m.DescriptionColumn != "" && c.desc < 0 {
		return c, errors.New(errors.ErrCodeInvalidInput, "description column %q not found in header", m.DescriptionColumn)
	}
	for i, h := range header {
		if i == c.id || i == c.name || i == c.desc || strings.TrimSpace(h) == "" {
			continue
		}
		if slices.ContainsFunc(m.Ignore, func(s string) bool { return strings.EqualFold(s, strings.TrimSpace(h)) }) {
			continue
		}
		c.props = append(c.props, i)
	}
	return c, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// PropertyID returns the id of the property node holding column for the
// row node nodeID. Ids are deterministic so re-importing a table updates
// rather than duplicates.
func PropertyID(nodeID, column string) string {
	return nodeID + ":" + strings.ToLower(strings.Join(strings.Fields(column), "_"))
}

// ImportRows adds one node per row to g.
//
// A header missing the id column (or a named optional column) fails with
// INVALID_INPUT, as does an unknown Kind. Rows without an id are skipped
// with a data-quality warning on g. Rows whose id already exists reuse the
// existing node.
func ImportRows(g *graph.Graph, header []string, rows [][]string, m Mapping, opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	kind := m.Kind
	if kind == "" {
		kind = model.KindUS
	}
	if !kind.IsKnown() {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", kind)
	}
	cols, err := m.resolve(header)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i, row := range rows {
		res.Rows++
		id := cell(row, cols.id)
		if err := errors.ValidateID(id); err != nil {
			g.Warnf(graph.WarnDataQuality, "row %d: %v, skipped", i+1, err)
			res.Skipped++
			continue
		}
		name := cell(row, cols.name)
		if name == "" {
			name = id
		}

		_, existed := g.Node(id)
		n := model.NewNode(id, name, kind)
		n.Description = cell(row, cols.desc)
		n = g.AddNode(n, false)
		if !existed {
			res.Nodes++
		}

		for _, c := range cols.props {
			value := cell(row, c)
			if value == "" {
				continue
			}
			column := strings.TrimSpace(header[c])
			pid := PropertyID(n.ID, column)
			if _, ok := g.Node(pid); ok && !opts.Overwrite {
				continue
			}
			g.AddNode(model.NewProperty(pid, column, value), opts.Overwrite)
			if !g.HasEdge(n.ID, pid, model.EdgeHasProperty) {
				if _, err := g.AddEdge("has_property:"+pid, n.ID, pid, model.EdgeHasProperty); err != nil {
					g.Warnf(graph.WarnDataQuality, "row %d: %v", i+1, err)
					continue
				}
			}
			res.Properties++
		}
	}

	opts.Logger.Debug("imported rows",
		"rows", res.Rows,
		"nodes", res.Nodes,
		"properties", res.Properties,
		"skipped", res.Skipped)
	return res, nil
}

// ReadCSV imports a CSV document whose first record is the header.
// Unparseable CSV fails with MALFORMED_DOCUMENT.
func ReadCSV(g *graph.Graph, r io.Reader, m Mapping, opts Options) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "read csv")
	}
	if len(records) == 0 {
		return Result{}, errors.New(errors.ErrCodeMalformedDocument, "csv has no header")
	}
	return ImportRows(g, records[0], records[1:], m, opts)
}
