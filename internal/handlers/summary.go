package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

// Summarizer defines the aggregation the summary endpoint needs.
type Summarizer interface {
	Summary(ctx context.Context, filter models.DebtFilter) (models.Summary, error)
}

// PersonBalanceResponse is one row of the per-person breakdown.
// swagger:model PersonBalanceResponse
type PersonBalanceResponse struct {
	// default: Alex
	Name string `json:"name"`
	// default: 30.0
	Balance float64 `json:"balance"`
	// default: $30.00
	Display string `json:"display"`
}

// SummaryDisplay holds the formatted aggregate strings.
// swagger:model SummaryDisplay
type SummaryDisplay struct {
	NetBalance     string `json:"net_balance"`
	TotalOwedToYou string `json:"total_owed_to_you"`
	TotalYouOwe    string `json:"total_you_owe"`
}

// SummaryResponse represents the balance summary
// swagger:model SummaryResponse
type SummaryResponse struct {
	// Positive when the user is owed money overall
	// default: 30.0
	NetBalance float64 `json:"net_balance"`

	// default: 50.0
	TotalOwedToYou float64 `json:"total_owed_to_you"`

	// default: 20.0
	TotalYouOwe float64 `json:"total_you_owe"`

	// Highest balance first
	People []PersonBalanceResponse `json:"people"`

	Display SummaryDisplay `json:"display"`
}

func newSummaryResponse(s models.Summary, f Formatter) SummaryResponse {
	people := make([]PersonBalanceResponse, 0, len(s.People))
	for _, p := range s.People {
		people = append(people, PersonBalanceResponse{
			Name:    p.Name,
			Balance: asFloat(p.Balance),
			Display: f.Signed(p.Balance),
		})
	}
	return SummaryResponse{
		NetBalance:     asFloat(s.NetBalance),
		TotalOwedToYou: asFloat(s.TotalOwedToYou),
		TotalYouOwe:    asFloat(s.TotalYouOwe),
		People:         people,
		Display: SummaryDisplay{
			NetBalance:     f.Signed(s.NetBalance),
			TotalOwedToYou: f.Amount(s.TotalOwedToYou),
			TotalYouOwe:    f.Amount(s.TotalYouOwe),
		},
	}
}

// NewSummaryHandler returns an HTTP handler with the net balance, totals and per-person balances.
// @Summary Balance summary
// @Tags debts
// @Produce json
// @Param search query string false "Substring of person or note"
// @Param person query string false "Exact person"
// @Param direction query string false "you_owe or they_owe"
// @Success 200 {object} handlers.SummaryResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /api/summary [get]
func NewSummaryHandler(svc Summarizer, settings SettingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		s, err := svc.Summary(ctx, filterFromQuery(r.URL.Query()))
		if err != nil {
			logger.Log.Errorw("failed to summarize debts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to compute summary")
			return
		}

		writeJSON(w, http.StatusOK, newSummaryResponse(s, NewFormatter(settings.Load(ctx))))
	}
}
