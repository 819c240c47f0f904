package models

import "github.com/shopspring/decimal"

// PersonBalance is the net balance with one counterparty.
// swagger:model PersonBalance
type PersonBalance struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary holds the derived aggregates of a record set.
// swagger:model Summary
type Summary struct {
	// NetBalance is positive when the user is owed money overall.
	NetBalance     decimal.Decimal `json:"net_balance"`
	TotalOwedToYou decimal.Decimal `json:"total_owed_to_you"`
	TotalYouOwe    decimal.Decimal `json:"total_you_owe"`
	People         []PersonBalance `json:"people"`
}
