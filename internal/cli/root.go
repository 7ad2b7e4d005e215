// Package cli implements the txnimport command line tool: the import
// pipeline against a local SQLite database.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/core/rules"
	"github.com/JonMunkholm/txnimport/internal/logging"
	"github.com/JonMunkholm/txnimport/internal/store/sqlite"
)

// Version is set at build time.
var Version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	dbPath      string
	locale      string
	rulesFile   string
	logLevel    string
	matchAmount bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "txnimport",
		Short:   "Import bank statement exports into a local ledger",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dbPath, "db", envOr("TXNIMPORT_DB", "txnimport.db"), "SQLite database file")
	flags.StringVar(&opts.locale, "locale", envOr("IMPORT_LOCALE", "it"), "built-in rule set (it, en)")
	flags.StringVar(&opts.rulesFile, "rules", envOr("IMPORT_RULES_FILE", ""), "YAML rule set replacing the built-in one")
	flags.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "log level: debug, info, warn, error")
	flags.BoolVar(&opts.matchAmount, "match-amount", false, "treat rows as duplicates only when the amount matches too")

	rootCmd.AddCommand(
		newImportCommand(opts),
		newConfigsCommand(opts),
		newHistoryCommand(opts),
		newCategoriesCommand(opts),
	)

	return rootCmd
}

// openStore opens the database named by --db.
func (o *globalOptions) openStore() (*sqlite.Store, error) {
	st, err := sqlite.Open(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", o.dbPath, err)
	}
	return st, nil
}

// newService builds the import service on st. mappings overrides the
// mapping store when non-nil.
func (o *globalOptions) newService(st *sqlite.Store, mappings core.MappingStore) (*core.Service, error) {
	ruleSet, err := rules.Load(o.locale, o.rulesFile)
	if err != nil {
		return nil, err
	}
	if mappings == nil {
		mappings = st
	}
	return core.NewService(core.Deps{
		Mappings:     mappings,
		Transactions: st,
		Categories:   st,
		Runs:         st,
		Rules:        ruleSet,
		Dedup:        core.DedupPolicy{MatchAmount: o.matchAmount},
	})
}

// readOnlyMappings serves lookups but drops saves, for dry runs.
type readOnlyMappings struct {
	core.MappingStore
}

func (readOnlyMappings) Save(context.Context, string, string, core.ColumnMapping) error {
	return nil
}
