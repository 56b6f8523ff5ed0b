package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stratagraph/pkg/rules"
)

// rulesCommand creates the rules command.
func (c *CLI) rulesCommand() *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the connection rules edges are validated against",
		Long: `List the edge types of the active rule table with the node kinds they
may connect. --dump prints the embedded default table as TOML, a starting
point for a custom table set with "rules" in the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump {
				_, err := out.Write(rules.DefaultDocument())
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			tbl, err := cfg.LoadRules()
			if err != nil {
				return err
			}
			printTitle("Rule table %s", tbl.Version())
			for _, et := range tbl.EdgeTypes() {
				r, _ := tbl.Rule(et)
				printKeyValue(string(et), matchers(r.Sources)+" "+iconArrow+" "+matchers(r.Targets))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print the embedded default table")

	return cmd
}

func matchers(ms []rules.Matcher) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}
