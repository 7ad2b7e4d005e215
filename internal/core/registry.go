package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]RuleSet)
	registryMu sync.RWMutex
)

// Register adds a rule set to the registry under its locale.
// Panics if a rule set with the same locale is already registered.
func Register(rs RuleSet) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if rs.Locale == "" {
		panic("rule set without locale")
	}
	if _, exists := registry[rs.Locale]; exists {
		panic(fmt.Sprintf("rule set already registered: %s", rs.Locale))
	}

	registry[rs.Locale] = rs.withDefaults()
}

// Rules returns the rule set registered for locale.
// Returns false if not found.
func Rules(locale string) (RuleSet, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	rs, ok := registry[locale]
	return rs, ok
}

// Locales returns all registered locales, sorted alphabetically.
func Locales() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	locales := make([]string, 0, len(registry))
	for l := range registry {
		locales = append(locales, l)
	}

	sort.Strings(locales)
	return locales
}

// Clear removes all registered rule sets.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]RuleSet)
}
