package handlers

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/sbilibin2017/settle-sense/internal/logger"
	"github.com/sbilibin2017/settle-sense/internal/models"
)

// BackupManager defines the snapshot operations exposed over HTTP.
type BackupManager interface {
	Snapshot(ctx context.Context) (string, error)
	Restore(ctx context.Context, name string) error
	List() ([]models.BackupInfo, error)
}

// BackupResponse represents a created snapshot
// swagger:model BackupResponse
type BackupResponse struct {
	// default: Backup created successfully: debts_20240501_120000.sqlite
	Message string `json:"message"`

	// default: debts_20240501_120000.sqlite
	File string `json:"file"`
}

// NewCreateBackupHandler returns an HTTP handler taking a snapshot of the database.
// @Summary Create backup
// @Tags backup
// @Produce json
// @Success 201 {object} handlers.BackupResponse
// @Failure 404 {object} handlers.ErrorResponse "No database file yet"
// @Failure 500 {object} handlers.ErrorResponse
// @Router /backup/create [post]
func NewCreateBackupHandler(svc BackupManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := svc.Snapshot(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to create backup", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to create backup")
			return
		}
		if path == "" {
			writeError(w, http.StatusNotFound, "Failed to create backup: no database file")
			return
		}

		name := filepath.Base(path)
		writeJSON(w, http.StatusCreated, BackupResponse{
			Message: "Backup created successfully: " + name,
			File:    name,
		})
	}
}

// NewRestoreBackupHandler returns an HTTP handler replacing the database with a snapshot.
// The current database is snapshotted before it is replaced.
// @Summary Restore backup
// @Tags backup
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param file formData string true "Backup file name"
// @Success 200 {object} handlers.MessageResponse
// @Failure 404 {object} handlers.ErrorResponse "Invalid backup file"
// @Failure 500 {object} handlers.ErrorResponse
// @Router /backup/restore [post]
func NewRestoreBackupHandler(svc BackupManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := requestValues(r)
		if err != nil {
			logger.Log.Errorw("failed to read restore request", "error", err)
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		file := values.Get("file")
		if err := svc.Restore(r.Context(), file); err != nil {
			logger.Log.Errorw("failed to restore backup", "file", file, "error", err)
			writeServiceError(w, err, "Failed to restore backup")
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Backup restored successfully"})
	}
}
