package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/txnimport/internal/core"
)

type importOptions struct {
	name     string
	dryRun   bool
	limit    int
	date     int
	desc     int
	category int
	amount   int
	outflow  int
	inflow   int
	mode     string
}

func newImportCommand(g *globalOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV or XLSX statement",
		Long: "Import a CSV or XLSX statement. A layout seen before is parsed with its saved\n" +
			"mapping; a new layout needs the column flags once (indices start at 0).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := opts.mapping(cmd)
			if err != nil {
				return err
			}
			return runImport(cmd, g, opts, args[0], mapping)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "label for this layout (defaults to the saved name or the file name)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "parse and show the rows without storing anything")
	f.IntVar(&opts.limit, "show", 20, "number of parsed rows to print, 0 for none, -1 for all")
	f.IntVar(&opts.date, "date", core.NoColumn, "date column")
	f.IntVar(&opts.desc, "desc", core.NoColumn, "description column")
	f.IntVar(&opts.category, "category", core.NoColumn, "category column")
	f.IntVar(&opts.amount, "amount", core.NoColumn, "signed amount column")
	f.IntVar(&opts.outflow, "outflow", core.NoColumn, "outflow column (split mode)")
	f.IntVar(&opts.inflow, "inflow", core.NoColumn, "inflow column (split mode)")
	f.StringVar(&opts.mode, "mode", "", "amount mode: standard, inverted, outflow_inflow")

	return cmd
}

// mapping returns the mapping given by flags, or nil when no column flag
// was set.
func (o *importOptions) mapping(cmd *cobra.Command) (*core.ColumnMapping, error) {
	f := cmd.Flags()
	if !f.Changed("date") && !f.Changed("desc") && !f.Changed("category") &&
		!f.Changed("amount") && !f.Changed("outflow") && !f.Changed("inflow") && !f.Changed("mode") {
		return nil, nil
	}

	m := core.NewColumnMapping()
	m.Date, m.Description, m.Category = o.date, o.desc, o.category
	m.Amount, m.Outflow, m.Inflow = o.amount, o.outflow, o.inflow
	m.AmountMode = ""
	if o.mode != "" {
		mode, err := core.ParseAmountMode(o.mode)
		if err != nil {
			return nil, err
		}
		m.AmountMode = mode
	}
	return &m, nil
}

func runImport(cmd *cobra.Command, g *globalOptions, opts *importOptions, path string, mapping *core.ColumnMapping) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	st, err := g.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var mappings core.MappingStore
	if opts.dryRun {
		mappings = readOnlyMappings{st}
	}
	svc, err := g.newService(st, mappings)
	if err != nil {
		return err
	}

	sess, err := svc.Import(ctx, filepath.Base(path), data, opts.name, mapping)
	if errors.Is(err, core.ErrNoMapping) {
		printSuggestion(out, sess)
		return fmt.Errorf("new layout %q: %w: pass --date and --amount (or --outflow/--inflow)", sess.Signature, core.ErrNoMapping)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: layout %q (%s mapping), header on row %d\n",
		sess.FileName, sess.ConfigName, sess.MappingSource, sess.HeaderRow+1)
	printStats(out, sess.Stats)
	printCandidates(out, sess.Candidates, opts.limit)

	if opts.dryRun {
		fmt.Fprintln(out, "dry run: nothing stored")
		return nil
	}

	res, err := svc.Commit(ctx, sess)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d, skipped %d duplicates\n", res.Added, res.Skipped)
	return nil
}

func printSuggestion(out io.Writer, sess *core.Session) {
	fmt.Fprintf(out, "%s: no saved mapping for this layout. Columns:\n", sess.FileName)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, h := range sess.Table.Headers {
		sample := ""
		if len(sess.Table.Rows) > 0 {
			sample = sess.Table.Rows[0][i].String()
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\n", i, h, sample)
	}
	tw.Flush()

	s := sess.Suggested
	if s.Usable() {
		fmt.Fprintf(out, "suggested: --date %d --amount %d --outflow %d --inflow %d --desc %d --category %d --mode %s\n",
			s.Date, s.Amount, s.Outflow, s.Inflow, s.Description, s.Category, s.Mode())
	}
	for _, m := range sess.Similar {
		fmt.Fprintf(out, "similar saved layout: %q (%.0f%% of its columns present)\n",
			m.Configuration.Name, m.Score*100)
	}
}

func printStats(out io.Writer, s core.TransformStats) {
	fmt.Fprintf(out, "rows %d, parsed %d, dropped %d (bad date %d, bad amount %d, zero %d, empty %d)\n",
		s.Rows, s.Kept, s.Dropped(), s.BadDate, s.BadAmount, s.ZeroAmount, s.Empty)
	if s.BothSides > 0 {
		fmt.Fprintf(out, "%d rows had both outflow and inflow; the outflow was used\n", s.BothSides)
	}
}

func printCandidates(out io.Writer, cands []core.Candidate, limit int) {
	if limit == 0 || len(cands) == 0 {
		return
	}
	if limit < 0 || limit > len(cands) {
		limit = len(cands)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDIRECTION\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, c := range cands[:limit] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Date, c.Direction, c.Amount.StringFixed(2), c.Category, c.Description)
	}
	tw.Flush()
	if limit < len(cands) {
		fmt.Fprintf(out, "... %d more\n", len(cands)-limit)
	}
}
