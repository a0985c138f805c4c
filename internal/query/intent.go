package query

import "strings"

// Intent is the category of information need a query expresses.
type Intent string

const (
	IntentNotional Intent = "notional_query"
	IntentPrice    Intent = "price_query"
	IntentVolume   Intent = "volume_query"
	IntentDate     Intent = "date_query"
	IntentGeneral  Intent = "general_query"
)

// intentCategory pairs an intent with its ordered trigger phrases.
type intentCategory struct {
	intent  Intent
	phrases []string
}

// intentCategories is evaluated in order with first-match-wins semantics.
// The category order is the tie-break rule: a query containing both
// "notional" and "price" resolves to notional_query because that category
// is checked first. Do not reorder without updating the tests that pin
// this behavior.
var intentCategories = []intentCategory{
	{IntentNotional, []string{
		"notional", "traded amount", "trading value", "amount traded",
		"total value", "trade value", "notional amount", "how much was traded",
	}},
	{IntentPrice, []string{
		"price", "current price", "stock price", "how much", "cost",
	}},
	{IntentVolume, []string{
		"volume", "trading volume", "shares traded", "quantity",
	}},
	{IntentDate, []string{
		"yesterday", "today", "specific date", "on date", "for date",
	}},
	{IntentGeneral, []string{
		"hello", "hi", "help", "what can you do", "hey",
	}},
}

// ClassifyIntent maps raw text to exactly one intent.
//
// Matching is plain substring containment on the lower-cased query, not
// whole-word matching. Classification is total: when no trigger phrase
// matches, the result is IntentGeneral.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, cat := range intentCategories {
		for _, phrase := range cat.phrases {
			if strings.Contains(lower, phrase) {
				return cat.intent
			}
		}
	}
	return IntentGeneral
}
