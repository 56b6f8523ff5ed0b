package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/registry"
)

// exportOpts holds the flags of the export command.
type exportOpts struct {
	output  string
	graphs  []string
	renames []string
	noCache bool
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <file|pattern>...",
		Short: "Select, rename and re-encode graphs of existing documents",
		Long: `Load diagrams or export documents and write the selected graphs to a new
export document. Use it to merge documents, pick graphs out of a document,
or convert between plain and zstd-compressed (.zst) output.`,
		Example: `  stratagraph export site.json -o site.json.zst
  stratagraph export a.json b.json --graph VDL16 --rename VDL16=VDL17 -o out.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output document (default stdout)")
	cmd.Flags().StringSliceVarP(&opts.graphs, "graph", "g", nil, "graph ids or aliases to export (default all)")
	cmd.Flags().StringArrayVar(&opts.renames, "rename", nil, "rename a graph, as old=new (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the import cache")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, args []string, opts exportOpts) error {
	files, err := expandInputs(args)
	if err != nil {
		return err
	}
	reg, err := c.newRegistry(opts.noCache)
	if err != nil {
		return err
	}
	if _, err := c.loadAll(cmd, reg, files, registry.LoadOptions{}); err != nil {
		return err
	}

	ids := opts.graphs
	for _, r := range opts.renames {
		oldID, newID, ok := strings.Cut(r, "=")
		if !ok || oldID == "" || newID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "rename %q: want old=new", r)
		}
		if err := reg.Rename(oldID, newID, ""); err != nil {
			return err
		}
		c.Logger.Debug("renamed", "from", oldID, "to", newID)
	}

	doc, err := reg.Export(cmd.Context(), ids...)
	if err != nil {
		return err
	}
	if err := writeDocument(opts.output, doc); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Exported %d graphs", len(doc.Graphs))
		printFile(opts.output)
	}
	return nil
}
