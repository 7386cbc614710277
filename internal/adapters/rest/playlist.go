package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
)

type generatePlaylistRequest struct {
	Prompt string `json:"prompt"`
}

type playlistResponse struct {
	Songs        []domain.Track         `json:"songs"`
	Prompt       string                 `json:"prompt,omitempty"`
	PlaylistInfo *domain.CollectionInfo `json:"playlistInfo,omitempty"`
	// LowConfidence lists positions in Songs whose video match was weak.
	LowConfidence []int `json:"lowConfidence,omitempty"`
}

// GeneratePlaylist handles POST /api/generate-playlist
func (h *Handler) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req generatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid request body", errCodeInvalidInput)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "Prompt is required", errCodeInvalidInput)
		return
	}

	res, err := h.svc.BuildQueue(r.Context(), req.Prompt)
	if err != nil {
		e := classify(err)
		if e.status >= http.StatusInternalServerError {
			h.log.Error("playlist generation failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		} else {
			h.log.Info("playlist generation rejected", zap.String("code", e.code), zap.Error(err))
		}
		writeErrorWithCode(w, e.status, e.message, e.code)
		return
	}

	writeJSON(w, http.StatusOK, playlistResponse{
		Songs:         res.Queue.Tracks(),
		Prompt:        res.Prompt,
		PlaylistInfo:  res.Collection,
		LowConfidence: res.LowConfidence,
	})
}

// Defaults handles GET /api/defaults
func (h *Handler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, playlistResponse{Songs: fallback.DefaultTracks()})
}
