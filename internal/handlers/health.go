package handlers

import "net/http"

// HealthResponse represents the liveness probe body
// swagger:model HealthResponse
type HealthResponse struct {
	// default: ok
	Status string `json:"status"`
}

// NewHealthHandler returns a liveness handler.
// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse
// @Router /healthz [get]
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
