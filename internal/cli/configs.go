package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/txnimport/internal/core"
)

func newConfigsCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage saved layout mappings",
	}
	cmd.AddCommand(newConfigsListCommand(g), newConfigsDeleteCommand(g))
	return cmd
}

func newConfigsListCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			cfgs, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfgs) == 0 {
				fmt.Fprintln(out, "no saved mappings")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMODE\tCOLUMNS\tUPDATED\tSIGNATURE")
			for _, c := range cfgs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					c.Name, c.Mapping.Mode(), describeMapping(c.Mapping),
					c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.HeaderSignature)
			}
			return tw.Flush()
		},
	}
}

func newConfigsDeleteCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete SIGNATURE",
		Short: "Forget the mapping of a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted mapping for %q\n", args[0])
			return nil
		},
	}
}

// describeMapping renders the assigned roles, e.g. "date=0 amount=2 desc=1".
func describeMapping(m core.ColumnMapping) string {
	roles := []struct {
		name string
		idx  int
	}{
		{"date", m.Date}, {"desc", m.Description}, {"category", m.Category},
		{"amount", m.Amount}, {"outflow", m.Outflow}, {"inflow", m.Inflow},
	}
	var parts []string
	for _, r := range roles {
		if r.idx != core.NoColumn {
			parts = append(parts, fmt.Sprintf("%s=%d", r.name, r.idx))
		}
	}
	return strings.Join(parts, " ")
}
