package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/star/neocc/internal/tabs"
)

func newTabsCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the object tabs and their required parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := tabs.Tabs()
			switch s.output {
			case "json":
				return printJSON(cmd.OutOrStdout(), list)
			case "yaml":
				return printYAML(cmd.OutOrStdout(), list)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TAB\tREQUIRED")
			for _, t := range list {
				req := strings.Join(t.Required, ", ")
				if req == "" {
					req = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\n", t.Name, req)
			}
			return tw.Flush()
		},
	}
}
