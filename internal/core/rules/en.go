package rules

import "github.com/JonMunkholm/txnimport/internal/core"

func init() {
	registerEnglish()
}

func registerEnglish() {
	core.Register(core.RuleSet{
		Locale: "en",
		Header: core.HeaderRules{
			Keywords: []string{
				"date", "transaction date", "posted date", "amount", "description",
				"details", "memo", "payee", "category", "debit", "credit",
				"money in", "money out", "currency",
			},
		},
		Columns: core.ColumnHints{
			Date:        []string{"transaction date", "posted date", "date"},
			Description: []string{"description", "details", "payee", "memo", "narrative"},
			Category:    []string{"category"},
			Amount:      []string{"amount", "value"},
			Outflow:     []string{"debit", "money out", "paid out", "withdrawal"},
			Inflow:      []string{"credit", "money in", "paid in", "deposit"},
		},
		Aliases: []core.CategoryAlias{
			{Contains: []string{"grocer", "shop", "supermarket"}, Category: "shopping"},
			{Contains: []string{"restaurant", "dining", "food", "coffee"}, Category: "restaurants"},
			{Contains: []string{"transport", "travel", "fuel", "gas station", "taxi"}, Category: "transport"},
			{Contains: []string{"utilit", "bill", "phone", "internet"}, Category: "utilities"},
			{Contains: []string{"health", "pharmacy", "medical"}, Category: "health"},
			{Contains: []string{"rent", "mortgage", "housing"}, Category: "housing"},
			{Contains: []string{"entertainment", "leisure", "subscription"}, Category: "entertainment"},
			{Contains: []string{"salary", "payroll", "wage"}, Category: "salary"},
		},
		Descriptions: []core.KeywordRule{
			{Keyword: "salary", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "payroll", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "refund", Category: "refunds", Direction: core.DirectionIncome},

			{Keyword: "tesco", Category: "shopping"},
			{Keyword: "sainsbury", Category: "shopping"},
			{Keyword: "walmart", Category: "shopping"},
			{Keyword: "aldi", Category: "shopping"},
			{Keyword: "lidl", Category: "shopping"},
			{Keyword: "amazon", Category: "shopping"},
			{Keyword: "grocer", Category: "shopping"},

			{Keyword: "restaurant", Category: "restaurants"},
			{Keyword: "starbucks", Category: "restaurants"},
			{Keyword: "pizza", Category: "restaurants"},

			{Keyword: "uber", Category: "transport"},
			{Keyword: "shell", Category: "transport"},
			{Keyword: "railway", Category: "transport"},

			{Keyword: "electric", Category: "utilities"},
			{Keyword: "water bill", Category: "utilities"},
			{Keyword: "pharmacy", Category: "health"},
			{Keyword: "rent", Category: "housing"},
			{Keyword: "netflix", Category: "entertainment"},
			{Keyword: "spotify", Category: "entertainment"},
			{Keyword: "cash withdrawal", Category: "cash"},
		},
	})
}
