package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/txnimport/internal/core"
)

func newHistoryCommand(g *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent imports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no imports yet")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tFILE\tLAYOUT\tADDED\tSKIPPED\tDROPPED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"), r.FileName, r.ConfigName,
					r.Added, r.Skipped, r.Dropped)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func newCategoriesCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the canonical category list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			cats, err := st.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set ID=NAME...",
		Short: "Replace the category list",
		Long:  "Replace the category list. Guessed category keys resolve to these ids by id or name.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := make([]core.Category, 0, len(args))
			for _, arg := range args {
				id, name, ok := strings.Cut(arg, "=")
				if !ok || strings.TrimSpace(id) == "" {
					return fmt.Errorf("category %q: want ID=NAME", arg)
				}
				cats = append(cats, core.Category{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name)})
			}

			st, err := g.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SetCategories(cmd.Context(), cats); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories stored\n", len(cats))
			return nil
		},
	})

	return cmd
}
