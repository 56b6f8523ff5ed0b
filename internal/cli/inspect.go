package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/pkg/chrono"
	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/export"
	"github.com/matzehuels/stratagraph/pkg/graph"
	"github.com/matzehuels/stratagraph/pkg/model"
	"github.com/matzehuels/stratagraph/pkg/registry"
)

// inspectOpts holds the flags of the inspect command.
type inspectOpts struct {
	graphs     []string
	chronology bool
	start, end float64
	warnings   int
	asJSON     bool
	noCache    bool
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{start: math.Inf(-1), end: math.Inf(1), warnings: 10}

	cmd := &cobra.Command{
		Use:   "inspect <file|pattern>...",
		Short: "Summarize graphs: counts, warnings and chronology",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.chronology = opts.chronology || cmd.Flags().Changed("start") || cmd.Flags().Changed("end")
			return c.runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.graphs, "graph", "g", nil, "graph ids or aliases to inspect (default all)")
	cmd.Flags().BoolVarP(&opts.chronology, "chronology", "c", false, "derive time spans of stratigraphic units")
	cmd.Flags().Float64Var(&opts.start, "start", opts.start, "list units overlapping a range starting at this year")
	cmd.Flags().Float64Var(&opts.end, "end", opts.end, "list units overlapping a range ending at this year")
	cmd.Flags().IntVar(&opts.warnings, "warnings", opts.warnings, "warnings listed per graph (0 lists all)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the import cache")

	return cmd
}

// inspection is the summary of one graph.
type inspection struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Aliases     []string                  `json:"aliases,omitempty"`
	Counts      export.Counts             `json:"counts"`
	Warnings    map[graph.WarningKind]int `json:"warnings,omitempty"`
	IndexStats  graph.IndexStats          `json:"index"`
	Chronology  *chrono.Result            `json:"chronology,omitempty"`
	InRange     []string                  `json:"in_range,omitempty"`
	warningList []graph.Warning
}

func (c *CLI) runInspect(cmd *cobra.Command, args []string, opts inspectOpts) error {
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
	if len(ids) == 0 {
		ids = reg.IDs()
	}
	var results []inspection
	for _, id := range ids {
		g, ok := reg.Get(id)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
		}
		results = append(results, inspect(reg, g, opts))
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, res := range results {
		if i > 0 {
			printNewline()
		}
		printInspection(res, opts)
	}
	return nil
}

func inspect(reg *registry.Registry, g *graph.Graph, opts inspectOpts) inspection {
	res := inspection{
		ID:      g.ID,
		Name:    g.DisplayName(),
		Aliases: reg.Aliases(g.ID),
	}
	if opts.chronology {
		cr := chrono.Propagate(g)
		res.Chronology = &cr
		for _, n := range chrono.InRange(g, opts.start, opts.end) {
			res.InRange = append(res.InRange, n.ID)
		}
	}
	res.Counts = export.BuildGraph(g).Count()
	res.IndexStats = g.IndexStats()
	res.warningList = g.Warnings()
	if len(res.warningList) > 0 {
		res.Warnings = map[graph.WarningKind]int{}
		for _, w := range res.warningList {
			res.Warnings[w.Kind]++
		}
	}
	return res
}

func printInspection(res inspection, opts inspectOpts) {
	printTitle("%s", res.ID)
	printKeyValue("name", res.Name)
	if len(res.Aliases) > 0 {
		printKeyValue("aliases", strings.Join(res.Aliases, ", "))
	}
	printStats(res.Counts.Nodes, res.Counts.Edges, res.Counts.Warnings)
	for _, cat := range export.Categories {
		if n := res.Counts.ByCategory[cat]; n > 0 {
			printKeyValue(cat, fmt.Sprint(n))
		}
	}

	if res.Chronology != nil {
		printInfo("Chronology: %d units resolved, %d unresolved",
			len(res.Chronology.Spans), len(res.Chronology.Unresolved))
		if !math.IsInf(opts.start, -1) || !math.IsInf(opts.end, 1) {
			printDetail("%d units overlap [%s, %s]", len(res.InRange), fmtYear(opts.start), fmtYear(opts.end))
			for _, id := range res.InRange {
				span := res.Chronology.Spans[id]
				printDetail("%s  %s .. %s (%s)", id, fmtYear(span.Start), fmtYear(span.End), span.Source)
			}
		}
	}
	printWarnings(res.warningList, opts.warnings)
}

// fmtYear prints a year, showing open bounds as "…".
func fmtYear(y float64) string {
	if math.IsInf(y, 0) || math.Abs(y) >= model.TimeSentinel {
		return "…"
	}
	return fmt.Sprintf("%g", y)
}
