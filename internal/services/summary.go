package services

import (
	"sort"

	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/shopspring/decimal"
)

// NetAmount is the signed value of a record from the user's point of view:
// positive when the counterparty owes the user.
func NetAmount(r models.DebtRecord) decimal.Decimal {
	if r.Direction == models.TheyOwe {
		return r.Amount
	}
	return r.Amount.Neg()
}

// Summarize folds records into totals and per-person balances.
// People are ordered by balance descending; equal balances keep first-seen order.
func Summarize(records []models.DebtRecord) models.Summary {
	var (
		owedToYou = decimal.Zero
		youOwe    = decimal.Zero
		order     []string
		balances  = make(map[string]decimal.Decimal)
	)

	for _, r := range records {
		if r.Direction == models.TheyOwe {
			owedToYou = owedToYou.Add(r.Amount)
		} else {
			youOwe = youOwe.Add(r.Amount)
		}

		b, seen := balances[r.Person]
		if !seen {
			order = append(order, r.Person)
		}
		balances[r.Person] = b.Add(NetAmount(r))
	}

	people := make([]models.PersonBalance, 0, len(order))
	for _, name := range order {
		people = append(people, models.PersonBalance{Name: name, Balance: balances[name]})
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].Balance.GreaterThan(people[j].Balance)
	})

	return models.Summary{
		NetBalance:     owedToYou.Sub(youOwe),
		TotalOwedToYou: owedToYou,
		TotalYouOwe:    youOwe,
		People:         people,
	}
}
