package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegionsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "Lists the cities prices can be requested for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, r := range opts.cfg.Regions {
				marker := " "
				if r == opts.cfg.Region {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, r)
			}
			return nil
		},
	}
}
