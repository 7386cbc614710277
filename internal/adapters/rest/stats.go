package rest

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
)

// maxStatsIDs caps one stats request.
const maxStatsIDs = 500

type statsRequest struct {
	IDs []string `json:"ids"`
}

type statsResponse struct {
	Stats map[string]domain.MediaStats `json:"stats"`
}

// Stats handles POST /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req statsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid request body", errCodeInvalidInput)
		return
	}
	if len(req.IDs) > maxStatsIDs {
		writeErrorWithCode(w, http.StatusBadRequest, "Too many ids", errCodeInvalidInput)
		return
	}

	stats, err := h.svc.Stats(r.Context(), req.IDs)
	if err != nil {
		h.log.Error("stats lookup failed", zap.Int("ids", len(req.IDs)), zap.Error(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: stats})
}
