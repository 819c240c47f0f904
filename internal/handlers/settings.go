package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
	"github.com/spf13/cast"
)

// SettingsStore loads and persists the presentation settings.
type SettingsStore interface {
	Load(ctx context.Context) models.Settings
	Save(ctx context.Context, s models.Settings) error
}

// InfoProvider describes the database file and the runtime.
type InfoProvider interface {
	DatabaseInfo(ctx context.Context) (models.DatabaseInfo, error)
	SystemInfo(ctx context.Context) (models.SystemInfo, error)
}

// SettingsResponse represents the settings page
// swagger:model SettingsResponse
type SettingsResponse struct {
	Settings models.Settings     `json:"settings"`
	Database models.DatabaseInfo `json:"database"`
	System   models.SystemInfo   `json:"system"`

	// Newest first
	Backups []models.BackupInfo `json:"backups"`
}

// SettingsUpdateResponse represents a saved settings document
// swagger:model SettingsUpdateResponse
type SettingsUpdateResponse struct {
	// default: Settings updated successfully
	Message  string          `json:"message"`
	Settings models.Settings `json:"settings"`
}

// NewGetSettingsHandler returns an HTTP handler for the settings page.
// Info that cannot be collected is left empty rather than failing the page.
// @Summary Settings
// @Tags settings
// @Produce json
// @Success 200 {object} handlers.SettingsResponse
// @Router /settings [get]
func NewGetSettingsHandler(settings SettingsReader, info InfoProvider, backups BackupManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := SettingsResponse{Settings: settings.Load(ctx), Backups: []models.BackupInfo{}}

		db, err := info.DatabaseInfo(ctx)
		if err != nil {
			logger.Log.Errorw("failed to collect database info", "error", err)
		}
		resp.Database = db

		sys, err := info.SystemInfo(ctx)
		if err != nil {
			logger.Log.Errorw("failed to collect system info", "error", err)
		}
		resp.System = sys

		list, err := backups.List()
		if err != nil {
			logger.Log.Errorw("failed to list backups", "error", err)
		} else if list != nil {
			resp.Backups = list
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// NewUpdateSettingsHandler returns an HTTP handler saving one section of the settings.
// @Summary Update settings
// @Description section=general updates currency_symbol and date_format; section=display updates theme, records_per_page and show_charts.
// @Tags settings
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} handlers.SettingsUpdateResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /settings [post]
func NewUpdateSettingsHandler(settings SettingsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		values, err := requestValues(r)
		if err != nil {
			logger.Log.Errorw("failed to read settings request", "error", err)
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		current := settings.Load(ctx)
		defaults := models.DefaultSettings()

		switch section := values.Get("section"); section {
		case "general":
			current.CurrencySymbol = valueOr(values.Get("currency_symbol"), defaults.CurrencySymbol)
			current.DateFormat = valueOr(values.Get("date_format"), defaults.DateFormat)
		case "display":
			current.Theme = valueOr(values.Get("theme"), defaults.Theme)
			perPage, err := cast.ToIntE(valueOr(values.Get("records_per_page"), "10"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid settings: records_per_page")
				return
			}
			current.RecordsPerPage = perPage
			current.ShowCharts = formBool(values.Get("show_charts"))
		default:
			logger.Log.Warnw("unknown settings section", "section", section)
			writeError(w, http.StatusBadRequest, "Unknown settings section")
			return
		}

		if err := settings.Save(ctx, current); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				fields := make([]string, 0, len(verrs))
				for _, fe := range verrs {
					fields = append(fields, fe.Field())
				}
				writeError(w, http.StatusBadRequest, "Invalid settings: "+strings.Join(fields, ", "))
				return
			}
			logger.Log.Errorw("failed to save settings", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}

		writeJSON(w, http.StatusOK, SettingsUpdateResponse{Message: "Settings updated successfully", Settings: current})
	}
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
