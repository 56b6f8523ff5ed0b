package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/export"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/importer/table"
	"github.com/matzehuels/stratagraph/pkg/model"
	"github.com/matzehuels/stratagraph/pkg/registry"
)

// importOpts holds the flags of the import command.
type importOpts struct {
	output    string
	id        string
	format    string
	overwrite bool
	noCache   bool
	refresh   bool

	// CSV inputs
	idColumn   string
	nameColumn string
	descColumn string
	kind       string
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	opts := importOpts{idColumn: "id", kind: string(model.KindUS)}

	cmd := &cobra.Command{
		Use:   "import <file|pattern>...",
		Short: "Import diagrams into an export document",
		Long: `Import yEd GraphML diagrams, export documents or CSV tables and write
all resulting graphs to a single export document.

Patterns support ** (e.g. "site/**/*.graphml"). Output ending in .zst is
zstd-compressed; without -o the document is written to stdout.

CSV files become one graph each, named after the file unless --id is set.
Every row is a node; every other column becomes a property.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output document (.json or .json.zst)")
	cmd.Flags().StringVar(&opts.id, "id", "", "graph id to use when the document declares none")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: graphml, json (default: by extension)")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace graphs with duplicate ids")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the import cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-import even when cached")
	cmd.Flags().StringVar(&opts.idColumn, "id-column", opts.idColumn, "CSV column holding node ids")
	cmd.Flags().StringVar(&opts.nameColumn, "name-column", "", "CSV column holding node names")
	cmd.Flags().StringVar(&opts.descColumn, "description-column", "", "CSV column holding node descriptions")
	cmd.Flags().StringVar(&opts.kind, "kind", opts.kind, "node kind of CSV rows")

	return cmd
}

func (c *CLI) runImport(cmd *cobra.Command, args []string, opts importOpts) error {
	format, err := registry.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	if err := checkSingleID(files, opts.id); err != nil {
		return err
	}
	reg, err := c.newRegistry(opts.noCache)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(cmd.Context(), "Importing...")
	spin.start()
	lo := registry.LoadOptions{ID: opts.id, Overwrite: opts.overwrite, Format: format, Refresh: opts.refresh}
	for i, f := range files {
		spin.update("Importing %d/%d %s", i+1, len(files), filepath.Base(f))
		if strings.EqualFold(filepath.Ext(f), ".csv") {
			err = c.importCSV(reg, f, opts)
		} else {
			_, err = reg.LoadFile(cmd.Context(), f, lo)
		}
		if err != nil {
			spin.stop()
			return err
		}
	}
	spin.stop()
	if spin.cancelled() {
		return cmd.Context().Err()
	}

	doc, err := reg.Export(cmd.Context())
	if err != nil {
		return err
	}
	prog.done("Imported", "files", len(files), "graphs", reg.Len())

	if err := writeDocument(opts.output, doc); err != nil {
		return err
	}
	if opts.output == "" {
		return nil
	}
	for _, g := range reg.Graphs() {
		printSuccess("%s %s", StyleValue.Render(g.ID), StyleDim.Render(g.DisplayName()))
		printStats(g.NodeCount(), g.EdgeCount(), g.WarningCount(""))
	}
	printFile(opts.output)
	return nil
}

// importCSV builds a graph from a CSV table and registers it.
func (c *CLI) importCSV(reg *registry.Registry, path string, opts importOpts) error {
	kind, ok := model.ParseKind(opts.kind)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", opts.kind)
	}
	id := opts.id
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := errors.ValidateID(id); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return err
	}
	defer f.Close()

	g := graph.New(id, graph.WithName(id), graph.WithRules(reg.Rules()))
	res, err := table.ReadCSV(g, f, table.Mapping{
		IDColumn:          opts.idColumn,
		NameColumn:        opts.nameColumn,
		DescriptionColumn: opts.descColumn,
		Kind:              kind,
	}, table.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	c.Logger.Debug("csv imported", "file", path, "rows", res.Rows, "skipped", res.Skipped)
	return reg.Add(g, opts.overwrite)
}

// writeDocument writes doc to path, or as plain JSON to stdout when path
// is empty.
func writeDocument(path string, doc export.Document) error {
	if path == "" {
		return export.Write(out, doc)
	}
	return export.WriteFile(path, doc)
}
