package rules

import "github.com/JonMunkholm/txnimport/internal/core"

func init() {
	registerItalian()
}

func registerItalian() {
	core.Register(core.RuleSet{
		Locale: "it",
		Header: core.HeaderRules{
			Keywords: []string{
				"data", "data operazione", "data contabile", "data valuta",
				"importo", "descrizione", "causale", "categoria",
				"entrate", "uscite", "dare", "avere", "addebiti", "accrediti",
				"divisa", "beneficiario",
			},
		},
		Columns: core.ColumnHints{
			Date:        []string{"data operazione", "data contabile", "data"},
			Description: []string{"descrizione", "causale", "dettagli", "beneficiario"},
			Category:    []string{"categoria"},
			Amount:      []string{"importo", "ammontare"},
			Outflow:     []string{"uscite", "addebiti", "dare"},
			Inflow:      []string{"entrate", "accrediti", "avere"},
		},
		Aliases: []core.CategoryAlias{
			{Contains: []string{"super", "spesa", "shop", "aliment", "acquist"}, Category: "shopping"},
			{Contains: []string{"ristor", "pizz", "bar", "trattoria"}, Category: "restaurants"},
			{Contains: []string{"trasport", "carbur", "benzin", "viagg", "treno", "taxi"}, Category: "transport"},
			{Contains: []string{"bollett", "utenz", "luce", "gas", "telefon"}, Category: "utilities"},
			{Contains: []string{"salute", "farmac", "medic"}, Category: "health"},
			{Contains: []string{"casa", "affitto", "mutuo"}, Category: "housing"},
			{Contains: []string{"svago", "tempo libero", "intratten", "abbonament"}, Category: "entertainment"},
			{Contains: []string{"stipend", "salari"}, Category: "salary"},
		},
		Descriptions: []core.KeywordRule{
			// income first so a salary transfer from a shop chain stays salary
			{Keyword: "stipendio", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "emolumenti", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "salario", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "pensione", Category: "salary", Direction: core.DirectionIncome},
			{Keyword: "rimborso", Category: "refunds", Direction: core.DirectionIncome},

			{Keyword: "esselunga", Category: "shopping"},
			{Keyword: "conad", Category: "shopping"},
			{Keyword: "coop", Category: "shopping"},
			{Keyword: "carrefour", Category: "shopping"},
			{Keyword: "lidl", Category: "shopping"},
			{Keyword: "eurospin", Category: "shopping"},
			{Keyword: "amazon", Category: "shopping"},
			{Keyword: "supermercato", Category: "shopping"},
			{Keyword: "spesa", Category: "shopping"},

			{Keyword: "ristorante", Category: "restaurants"},
			{Keyword: "pizzeria", Category: "restaurants"},
			{Keyword: "trattoria", Category: "restaurants"},
			{Keyword: "osteria", Category: "restaurants"},

			{Keyword: "trenitalia", Category: "transport"},
			{Keyword: "italo", Category: "transport"},
			{Keyword: "telepass", Category: "transport"},
			{Keyword: "autostrad", Category: "transport"},
			{Keyword: "carburante", Category: "transport"},

			{Keyword: "enel", Category: "utilities"},
			{Keyword: "bolletta", Category: "utilities"},
			{Keyword: "vodafone", Category: "utilities"},
			{Keyword: "fastweb", Category: "utilities"},

			{Keyword: "farmacia", Category: "health"},
			{Keyword: "affitto", Category: "housing"},
			{Keyword: "netflix", Category: "entertainment"},
			{Keyword: "spotify", Category: "entertainment"},
			{Keyword: "prelievo", Category: "cash"},
		},
		Placeholder: "Movimento",
	})
}
