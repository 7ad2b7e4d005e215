// Package rules registers the built-in import rule sets with the core registry.
// Import this package to make the "it" and "en" locales available.
package rules

// Each locale file uses init() to register its rule set.
