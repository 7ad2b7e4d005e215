package core

import "strings"

// Classifier assigns categories to transactions from a rule set.
// Guessed category keys are resolved against the canonical category list
// when one is available; otherwise the raw key is used.
type Classifier struct {
	rules     RuleSet
	canonical map[string]string // lowercased id or name -> id
}

// NewClassifier builds a classifier. categories may be nil.
func NewClassifier(rules RuleSet, categories []Category) *Classifier {
	c := &Classifier{rules: rules.withDefaults(), canonical: make(map[string]string)}
	for _, cat := range categories {
		if cat.ID == "" {
			continue
		}
		c.canonical[strings.ToLower(cat.ID)] = cat.ID
		if cat.Name != "" {
			if _, taken := c.canonical[strings.ToLower(cat.Name)]; !taken {
				c.canonical[strings.ToLower(cat.Name)] = cat.ID
			}
		}
	}
	return c
}

// Classify picks a category. A non-empty category cell is normalized first;
// when that yields nothing specific the description is matched against the
// ordered keyword table, first match wins. Unmatched income lands in the
// other-income bucket and unmatched expenses in the generic one.
func (c *Classifier) Classify(categoryText, description string, dir Direction) string {
	if key := c.NormalizeCategory(categoryText); key != "" && key != c.rules.GenericCategory {
		return c.resolve(key)
	}
	if key := c.GuessFromDescription(description, dir); key != "" {
		return c.resolve(key)
	}
	if dir == DirectionIncome {
		return c.resolve(c.rules.OtherIncomeCategory)
	}
	return c.resolve(c.rules.GenericCategory)
}

// NormalizeCategory maps free category text onto a canonical key through the
// alias table. Text that matches no alias yields the generic bucket and
// blank text yields "".
func (c *Classifier) NormalizeCategory(text string) string {
	text = strings.ToLower(CollapseSpaces(CleanCell(text)))
	if text == "" {
		return ""
	}
	for _, alias := range c.rules.Aliases {
		for _, frag := range alias.Contains {
			if strings.Contains(text, frag) {
				return alias.Category
			}
		}
	}
	return c.rules.GenericCategory
}

// GuessFromDescription returns the category of the first keyword rule found in
// the description, or "" when none applies to the direction.
func (c *Classifier) GuessFromDescription(description string, dir Direction) string {
	desc := strings.ToLower(description)
	if desc == "" {
		return ""
	}
	for _, rule := range c.rules.Descriptions {
		if rule.Direction != "" && rule.Direction != dir {
			continue
		}
		if strings.Contains(desc, rule.Keyword) {
			return rule.Category
		}
	}
	return ""
}

func (c *Classifier) resolve(key string) string {
	if id, ok := c.canonical[strings.ToLower(key)]; ok {
		return id
	}
	return key
}
