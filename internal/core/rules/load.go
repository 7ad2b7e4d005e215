package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/txnimport/internal/core"
)

// Load returns the rule set from the YAML file at path when one is given,
// otherwise the built-in rule set registered for locale.
func Load(locale, path string) (core.RuleSet, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("open rules file: %w", err)
		}
		defer f.Close()

		rs, err := core.LoadRuleSet(f)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("rules file %s: %w", path, err)
		}
		return rs, nil
	}

	rs, ok := core.Rules(strings.ToLower(strings.TrimSpace(locale)))
	if !ok {
		return core.RuleSet{}, fmt.Errorf("unknown locale %q (available: %s)",
			locale, strings.Join(core.Locales(), ", "))
	}
	return rs, nil
}
