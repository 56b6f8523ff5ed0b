package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/pkg/chrono"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/registry"
	"github.com/matzehuels/stratagraph/pkg/render/nodelink"
)

// renderOpts holds the flags of the render command. Unset flags fall back
// to the [render] section of the config.
type renderOpts struct {
	output   string
	graph    string
	format   string
	rankdir  string
	epochs   bool
	paradata bool
	detailed bool
	noCache  bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a graph as a node-link diagram",
		Long: `Render one graph of a diagram or export document with Graphviz.
Stratigraphic units are drawn bottom-up by default; --epochs groups them
into epoch clusters and --paradata adds documentation nodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("format") {
				opts.format = cfg.Render.Format
			}
			if !flags.Changed("rankdir") {
				opts.rankdir = cfg.Render.RankDir
			}
			if !flags.Changed("epochs") {
				opts.epochs = cfg.Render.Epochs
			}
			if !flags.Changed("paradata") {
				opts.paradata = cfg.Render.Paradata
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <graph>.<format>)")
	cmd.Flags().StringVarP(&opts.graph, "graph", "g", "", "graph id or alias (default: the only graph)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: svg, png, dot")
	cmd.Flags().StringVar(&opts.rankdir, "rankdir", "BT", "Graphviz rank direction: BT, TB, LR, RL")
	cmd.Flags().BoolVar(&opts.epochs, "epochs", false, "cluster units by epoch")
	cmd.Flags().BoolVar(&opts.paradata, "paradata", false, "include documentation nodes")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label units with kind and time span")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the import cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	format, err := nodelink.ParseFormat(strings.ToLower(opts.format))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "render")
	}
	reg, err := c.newRegistry(opts.noCache)
	if err != nil {
		return err
	}
	if _, err := reg.LoadFile(cmd.Context(), path, registry.LoadOptions{}); err != nil {
		return err
	}
	g, ok := reg.Get(opts.graph)
	if !ok {
		if opts.graph == "" {
			return errors.New(errors.ErrCodeInvalidInput, "%s holds %d graphs, pick one with --graph (%s)",
				path, reg.Len(), strings.Join(reg.IDs(), ", "))
		}
		return errors.New(errors.ErrCodeNotFound, "graph %s not found", opts.graph)
	}
	if opts.detailed {
		chrono.Propagate(g)
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(cmd.Context(), "Rendering "+g.ID+"...")
	spin.start()
	dot := nodelink.ToDOT(g, nodelink.Options{
		Detailed: opts.detailed,
		Paradata: opts.paradata,
		Epochs:   opts.epochs,
		RankDir:  strings.ToUpper(opts.rankdir),
	})
	data, err := nodelink.Render(cmd.Context(), dot, format)
	spin.stop()
	if err != nil {
		printError("Render failed")
		return err
	}
	prog.done("Rendered", "graph", g.ID, "format", format)

	output := opts.output
	if output == "" {
		output = g.ID + "." + string(format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", output)
	}
	printSuccess("Rendered %s", StyleValue.Render(g.DisplayName()))
	printFile(output)
	return nil
}
