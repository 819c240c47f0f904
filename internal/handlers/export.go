package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/sbilibin2017/settle-sense/internal/export"
	"github.com/sbilibin2017/settle-sense/internal/logger"
)

// Exporter writes the ledger as CSV.
type Exporter interface {
	Export(ctx context.Context, w io.Writer) error
}

// NewExportHandler returns an HTTP handler streaming the CSV export as an attachment.
// The file is built in memory first so a failure still produces a proper error response.
// @Summary Export CSV
// @Tags debts
// @Produce text/csv
// @Success 200 {file} file "SettleSense_Export.csv"
// @Failure 500 {object} handlers.ErrorResponse
// @Router /export [get]
func NewExportHandler(svc Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.Export(r.Context(), &buf); err != nil {
			logger.Log.Errorw("failed to export debts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to export entries")
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName)
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			logger.Log.Errorw("failed to write export", "error", err)
		}
	}
}
