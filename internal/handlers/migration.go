package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

// Migrator defines the migration operations exposed over HTTP.
type Migrator interface {
	CheckStatus(ctx context.Context) models.MigrationStatus
	Migrate(ctx context.Context, makeBackup bool) (models.MigrationResult, error)
}

// MigrationErrorResponse represents a failed migration. The database was left unchanged.
// swagger:model MigrationErrorResponse
type MigrationErrorResponse struct {
	// default: An error occurred during migration.
	Error string `json:"error"`

	// default: copy rows: constraint failed
	Details string `json:"details"`

	Status models.MigrationStatus `json:"status"`
}

// MigrationRunResponse represents a completed migration
// swagger:model MigrationRunResponse
type MigrationRunResponse struct {
	models.MigrationResult
	Status models.MigrationStatus `json:"status"`
}

// NewMigrationStatusHandler returns an HTTP handler reporting the schema checks.
// @Summary Migration status
// @Tags migration
// @Produce json
// @Success 200 {object} models.MigrationStatus
// @Router /migrate [get]
func NewMigrationStatusHandler(svc Migrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.CheckStatus(r.Context()))
	}
}

// NewRunMigrationHandler returns an HTTP handler that rebuilds the debt table.
// @Summary Run migration
// @Description Optionally snapshots the database first (backup=on). A failed backup does not stop the migration.
// @Tags migration
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param backup formData string false "on or true to back up first"
// @Success 200 {object} handlers.MigrationRunResponse
// @Failure 500 {object} handlers.MigrationErrorResponse
// @Router /migrate/run [post]
func NewRunMigrationHandler(svc Migrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		values, err := requestValues(r)
		if err != nil {
			logger.Log.Errorw("failed to read migration request", "error", err)
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		makeBackup := formBool(values.Get("backup"))

		result, err := svc.Migrate(ctx, makeBackup)
		if err != nil {
			logger.Log.Errorw("migration request failed", "backup", makeBackup, "error", err)
			resp := MigrationErrorResponse{
				Error:   result.Message,
				Details: err.Error(),
				Status:  svc.CheckStatus(ctx),
			}
			if resp.Error == "" {
				resp.Error = "An error occurred during migration."
			}
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}

		writeJSON(w, http.StatusOK, MigrationRunResponse{
			MigrationResult: result,
			Status:          svc.CheckStatus(ctx),
		})
	}
}
