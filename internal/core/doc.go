// Package core provides the business logic for importing bank statement
// exports into a personal ledger.
//
// The package is independent of any transport. The web wizard, the CLI and
// tests all drive the same [Service].
//
// # Pipeline
//
// An import moves through four steps, each a [Service] method operating on
// a [Session]:
//
//  1. [Service.Open] decodes the file (CSV, TSV or .xlsx), locates the header
//     row among preamble lines and computes the layout [Signature].
//  2. When a mapping was saved for that signature it is applied, otherwise a
//     [SuggestMapping] guess is attached and [Service.ApplyMapping] must be
//     called with the user's choice.
//  3. [Service.Transform] converts every row into a [Candidate], dropping
//     rows without a date or a non-zero amount, and classifies it with a
//     [Classifier].
//  4. [Service.Commit] stores the selected candidates, skipping any whose
//     [DedupKey] already exists, and records an [ImportRun].
//
// [Service.Import] runs all four steps in one call for non-interactive use.
//
// # Rule Sets
//
// Header keywords, column hints and category rules are locale data, kept in
// a [RuleSet]. Built-in sets register themselves at init time:
//
//	core.Register(core.RuleSet{
//	    Locale: "it",
//	    Header: core.HeaderRules{Keywords: []string{"data", "importo"}},
//	    ...
//	})
//
// A rule set can also be read from YAML with [LoadRuleSet].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each message has a code for support reference:
//
//   - FILE001-FILE004: unreadable, empty or oversized files
//   - MAP001-MAP004: missing, incomplete or unknown mappings
//   - IMP001-IMP007: session state, limits and bad requests
//   - DB001-DB003: storage failures
package core
