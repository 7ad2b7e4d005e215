package core

// rules.go holds the plain-data tables that drive header detection, column
// suggestions and categorization. Rule sets are registered per locale and can
// be replaced from a YAML file without touching code.

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Header scoring defaults.
const (
	DefaultSubstringWeight = 1
	DefaultExactWeight     = 5
	DefaultDatePenalty     = 5
	DefaultAmountPenalty   = 2
	DefaultHeaderScanRows  = 50
)

// Category keys produced when nothing more specific matches.
const (
	CategoryOther       = "other"
	CategoryOtherIncome = "other_income"
)

// HeaderRules weights the header row search.
type HeaderRules struct {
	Keywords        []string `yaml:"keywords"`
	SubstringWeight int      `yaml:"substring_weight"`
	ExactWeight     int      `yaml:"exact_weight"`
	DatePenalty     int      `yaml:"date_penalty"`
	AmountPenalty   int      `yaml:"amount_penalty"`
	ScanRows        int      `yaml:"scan_rows"`
}

// ColumnHints lists header fragments that suggest a column role.
type ColumnHints struct {
	Date        []string `yaml:"date"`
	Description []string `yaml:"description"`
	Category    []string `yaml:"category"`
	Amount      []string `yaml:"amount"`
	Outflow     []string `yaml:"outflow"`
	Inflow      []string `yaml:"inflow"`
}

// CategoryAlias normalizes free category text: any fragment contained in the
// text maps it to Category.
type CategoryAlias struct {
	Contains []string `yaml:"contains"`
	Category string   `yaml:"category"`
}

// KeywordRule maps a description keyword to a category.
// An empty Direction applies the rule to both directions.
type KeywordRule struct {
	Keyword   string    `yaml:"keyword"`
	Category  string    `yaml:"category"`
	Direction Direction `yaml:"direction,omitempty"`
}

// RuleSet is a complete, swappable set of import tables for one locale.
type RuleSet struct {
	Locale       string          `yaml:"locale"`
	Header       HeaderRules     `yaml:"header"`
	Columns      ColumnHints     `yaml:"columns"`
	Aliases      []CategoryAlias `yaml:"aliases"`
	Descriptions []KeywordRule   `yaml:"descriptions"`

	// GenericCategory is the bucket for expenses nothing matched.
	GenericCategory string `yaml:"generic_category"`
	// OtherIncomeCategory is the bucket for income nothing matched.
	OtherIncomeCategory string `yaml:"other_income_category"`
	// Placeholder replaces empty descriptions.
	Placeholder string `yaml:"placeholder"`
}

// LoadRuleSet decodes a YAML rule set and fills unset weights with defaults.
func LoadRuleSet(r io.Reader) (RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode rule set: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs.withDefaults(), nil
}

// Validate checks that the rule set can drive an import.
func (rs RuleSet) Validate() error {
	var errs []string

	if len(rs.Header.Keywords) == 0 {
		errs = append(errs, "header.keywords is empty")
	}
	for i, rule := range rs.Descriptions {
		if strings.TrimSpace(rule.Keyword) == "" || rule.Category == "" {
			errs = append(errs, fmt.Sprintf("descriptions[%d] needs keyword and category", i))
		}
		if rule.Direction != "" && !rule.Direction.Valid() {
			errs = append(errs, fmt.Sprintf("descriptions[%d] has unknown direction %q", i, rule.Direction))
		}
	}
	for i, alias := range rs.Aliases {
		if len(alias.Contains) == 0 || alias.Category == "" {
			errs = append(errs, fmt.Sprintf("aliases[%d] needs contains and category", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid rule set %q:\n  - %s", rs.Locale, strings.Join(errs, "\n  - "))
	}
	return nil
}

// withDefaults returns a copy with zero weights and buckets replaced by defaults
// and every keyword lowercased for matching.
func (rs RuleSet) withDefaults() RuleSet {
	if rs.Header.SubstringWeight == 0 {
		rs.Header.SubstringWeight = DefaultSubstringWeight
	}
	if rs.Header.ExactWeight == 0 {
		rs.Header.ExactWeight = DefaultExactWeight
	}
	if rs.Header.DatePenalty == 0 {
		rs.Header.DatePenalty = DefaultDatePenalty
	}
	if rs.Header.AmountPenalty == 0 {
		rs.Header.AmountPenalty = DefaultAmountPenalty
	}
	if rs.Header.ScanRows <= 0 {
		rs.Header.ScanRows = DefaultHeaderScanRows
	}
	if rs.GenericCategory == "" {
		rs.GenericCategory = CategoryOther
	}
	if rs.OtherIncomeCategory == "" {
		rs.OtherIncomeCategory = CategoryOtherIncome
	}
	if rs.Placeholder == "" {
		rs.Placeholder = "Transaction"
	}

	rs.Header.Keywords = lowerAll(rs.Header.Keywords)
	rs.Columns = ColumnHints{
		Date:        lowerAll(rs.Columns.Date),
		Description: lowerAll(rs.Columns.Description),
		Category:    lowerAll(rs.Columns.Category),
		Amount:      lowerAll(rs.Columns.Amount),
		Outflow:     lowerAll(rs.Columns.Outflow),
		Inflow:      lowerAll(rs.Columns.Inflow),
	}

	aliases := make([]CategoryAlias, len(rs.Aliases))
	for i, a := range rs.Aliases {
		aliases[i] = CategoryAlias{Contains: lowerAll(a.Contains), Category: a.Category}
	}
	rs.Aliases = aliases

	descs := make([]KeywordRule, len(rs.Descriptions))
	for i, d := range rs.Descriptions {
		d.Keyword = strings.ToLower(d.Keyword)
		descs[i] = d
	}
	rs.Descriptions = descs

	return rs
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
