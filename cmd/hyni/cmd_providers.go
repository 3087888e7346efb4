package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List available provider schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tDEFAULT MODEL\tSYSTEM\tMULTIMODAL\tSTREAMING")
			for _, name := range a.factory.AvailableProviders() {
				ctx, err := a.factory.CreateContext(name)
				if err != nil {
					a.logger.Warn("skipping provider with unusable schema", "provider", name, "error", err)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					name,
					orDash(ctx.Model()),
					yesNo(ctx.SupportsSystemMessages()),
					yesNo(ctx.SupportsMultimodal()),
					yesNo(ctx.SupportsStreaming()),
				)
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
