package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/sbilibin2017/settle-sense/internal/services"
	"github.com/shopspring/decimal"
)

// DebtReader defines the read side of the ledger used by the dashboard.
type DebtReader interface {
	List(ctx context.Context, filter models.DebtFilter, sort models.DebtSort) ([]models.DebtRecord, error)
	People(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id int64) (*models.DebtRecord, error)
}

// DebtWriter defines the mutations of the ledger.
type DebtWriter interface {
	Create(ctx context.Context, in models.DebtInput) (*models.DebtRecord, error)
	Update(ctx context.Context, id int64, in models.DebtInput) (*models.DebtRecord, error)
	Delete(ctx context.Context, id int64) error
}

// SettingsReader provides the presentation settings.
type SettingsReader interface {
	Load(ctx context.Context) models.Settings
}

// DebtView is a record plus its display strings.
// swagger:model DebtView
type DebtView struct {
	models.DebtRecord

	// Signed amount: positive when the user is owed
	NetAmount decimal.Decimal `json:"net_amount"`

	// default: $12.50
	AmountDisplay string `json:"amount_display"`

	// default: 2024-05-01
	CreatedDisplay string `json:"created_display"`
}

// DashboardFilters echoes the filters applied to a listing.
// swagger:model DashboardFilters
type DashboardFilters struct {
	Search    string `json:"search"`
	Person    string `json:"person"`
	Direction string `json:"direction"`
	Sort      string `json:"sort"`
	Order     string `json:"order"`
}

// DashboardResponse represents one page of the ledger
// swagger:model DashboardResponse
type DashboardResponse struct {
	Entries []DebtView `json:"entries"`

	// Aggregates over every entry matching the filters, not only this page
	Summary SummaryResponse `json:"summary"`

	// Everyone in the ledger, for the person filter
	People  []string         `json:"people"`
	Filters DashboardFilters `json:"filters"`

	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Total      int `json:"total"`

	Theme      string `json:"theme"`
	ShowCharts bool   `json:"show_charts"`
}

// DebtResponse represents the outcome of a create or update
// swagger:model DebtResponse
type DebtResponse struct {
	// default: Entry updated successfully
	Message string   `json:"message"`
	Entry   DebtView `json:"entry"`
}

func newDebtView(rec models.DebtRecord, f Formatter) DebtView {
	return DebtView{
		DebtRecord:     rec,
		NetAmount:      services.NetAmount(rec),
		AmountDisplay:  f.Amount(rec.Amount),
		CreatedDisplay: f.Date(rec.CreatedAt),
	}
}

func filterFromQuery(q url.Values) models.DebtFilter {
	return models.DebtFilter{
		Search:    strings.TrimSpace(q.Get("search")),
		Person:    strings.TrimSpace(q.Get("person")),
		Direction: models.Direction(strings.TrimSpace(q.Get("direction"))),
	}
}

// paginate clamps the requested page and returns it with the page count.
func paginate(raw string, total, perPage int) (page, pages int) {
	pages = (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return page, pages
}

// NewDashboardHandler returns an HTTP handler listing the ledger.
// @Summary List debts
// @Description Filtered, sorted and paginated entries together with the balance summary of every matching entry.
// @Tags debts
// @Produce json
// @Param search query string false "Substring of person or note"
// @Param person query string false "Exact person"
// @Param direction query string false "you_owe or they_owe"
// @Param sort query string false "date, amount, person or direction"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Success 200 {object} handlers.DashboardResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /api/debts [get]
func NewDashboardHandler(svc DebtReader, settings SettingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		filter := filterFromQuery(q)
		sort := models.ParseSort(q.Get("sort"), q.Get("order"))

		entries, err := svc.List(ctx, filter, sort)
		if err != nil {
			logger.Log.Errorw("failed to list debts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load entries")
			return
		}
		people, err := svc.People(ctx)
		if err != nil {
			logger.Log.Errorw("failed to list people", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load entries")
			return
		}

		cfg := settings.Load(ctx)
		f := NewFormatter(cfg)

		perPage := cfg.RecordsPerPage
		if perPage <= 0 {
			perPage = models.DefaultSettings().RecordsPerPage
		}
		page, pages := paginate(q.Get("page"), len(entries), perPage)
		start := min((page-1)*perPage, len(entries))
		end := min(start+perPage, len(entries))

		views := make([]DebtView, 0, end-start)
		for _, rec := range entries[start:end] {
			views = append(views, newDebtView(rec, f))
		}
		if people == nil {
			people = []string{}
		}

		writeJSON(w, http.StatusOK, DashboardResponse{
			Entries: views,
			Summary: newSummaryResponse(services.Summarize(entries), f),
			People:  people,
			Filters: DashboardFilters{
				Search:    filter.Search,
				Person:    filter.Person,
				Direction: string(filter.Direction),
				Sort:      string(sort.Key),
				Order:     sort.Order(),
			},
			Page:       page,
			TotalPages: pages,
			Total:      len(entries),
			Theme:      cfg.Theme,
			ShowCharts: cfg.ShowCharts,
		})
	}
}

// NewGetDebtHandler returns an HTTP handler for a single entry.
// @Summary Get debt
// @Tags debts
// @Produce json
// @Param id path int true "Entry id"
// @Success 200 {object} handlers.DebtView
// @Failure 404 {object} handlers.ErrorResponse "Entry not found"
// @Router /api/debts/{id} [get]
func NewGetDebtHandler(svc DebtReader, settings SettingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found")
			return
		}

		rec, err := svc.Get(ctx, id)
		if err != nil {
			logger.Log.Errorw("failed to get debt", "id", id, "error", err)
			writeServiceError(w, err, "Failed to load entry")
			return
		}

		writeJSON(w, http.StatusOK, newDebtView(*rec, NewFormatter(settings.Load(ctx))))
	}
}

// NewCreateDebtHandler returns an HTTP handler adding an entry.
// @Summary Add debt
// @Description Validates the entry, then stores it with fresh timestamps.
// @Tags debts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body handlers.DebtRequest true "Debt entry"
// @Success 201 {object} handlers.DebtResponse
// @Failure 400 {object} handlers.ErrorResponse "Validation failed"
// @Failure 422 {object} handlers.ErrorResponse "Rejected by the database"
// @Router /api/debts [post]
func NewCreateDebtHandler(svc DebtWriter, settings SettingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		in, err := parseDebtRequest(r)
		if err != nil {
			respondRequestError(w, err)
			return
		}

		rec, err := svc.Create(ctx, in)
		if err != nil {
			logger.Log.Errorw("failed to create debt", "person", in.Person, "error", err)
			writeServiceError(w, err, "An error occurred while adding the debt record")
			return
		}

		writeJSON(w, http.StatusCreated, DebtResponse{
			Message: fmt.Sprintf("Debt record for %s added successfully", rec.Person),
			Entry:   newDebtView(*rec, NewFormatter(settings.Load(ctx))),
		})
	}
}

// NewUpdateDebtHandler returns an HTTP handler editing an entry.
// @Summary Update debt
// @Tags debts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param id path int true "Entry id"
// @Param request body handlers.DebtRequest true "Debt entry"
// @Success 200 {object} handlers.DebtResponse
// @Failure 400 {object} handlers.ErrorResponse "Validation failed"
// @Failure 404 {object} handlers.ErrorResponse "Entry not found"
// @Failure 422 {object} handlers.ErrorResponse "Rejected by the database"
// @Router /api/debts/{id} [put]
func NewUpdateDebtHandler(svc DebtWriter, settings SettingsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found")
			return
		}

		in, err := parseDebtRequest(r)
		if err != nil {
			respondRequestError(w, err)
			return
		}

		rec, err := svc.Update(ctx, id, in)
		if err != nil {
			logger.Log.Errorw("failed to update debt", "id", id, "error", err)
			writeServiceError(w, err, "An error occurred while updating the entry")
			return
		}

		writeJSON(w, http.StatusOK, DebtResponse{
			Message: "Entry updated successfully",
			Entry:   newDebtView(*rec, NewFormatter(settings.Load(ctx))),
		})
	}
}

// NewDeleteDebtHandler returns an HTTP handler removing an entry.
// @Summary Delete debt
// @Tags debts
// @Produce json
// @Param id path int true "Entry id"
// @Success 200 {object} handlers.MessageResponse
// @Failure 404 {object} handlers.ErrorResponse "Entry not found"
// @Router /api/debts/{id} [delete]
func NewDeleteDebtHandler(svc DebtWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "Entry not found")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			logger.Log.Errorw("failed to delete debt", "id", id, "error", err)
			writeServiceError(w, err, "An error occurred while deleting the entry")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Entry deleted successfully"})
	}
}

func respondRequestError(w http.ResponseWriter, err error) {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		logger.Log.Warnw("rejected debt request", "reason", reqErr.msg)
		writeError(w, http.StatusBadRequest, reqErr.msg)
		return
	}
	logger.Log.Errorw("failed to read debt request", "error", err)
	writeError(w, http.StatusBadRequest, msgInvalidBody)
}
