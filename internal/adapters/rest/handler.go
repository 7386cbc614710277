package rest

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/services"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    *services.Orchestrator
	player http.Handler
	log    *zap.Logger
	router *http.ServeMux
	root   http.Handler
}

// NewHandler initializes the HTTP adapter and sets up routes. player serves
// the websocket bridge and may be nil.
func NewHandler(svc *services.Orchestrator, player http.Handler, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		svc:    svc,
		player: player,
		log:    log,
		router: http.NewServeMux(),
	}

	h.routes()
	h.root = chain(h.router, recoverer(log), accessLog(log), tracing(), requestID())

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)

	h.router.HandleFunc("POST /api/generate-playlist", h.GeneratePlaylist)
	h.router.HandleFunc("GET /api/defaults", h.Defaults)
	h.router.HandleFunc("POST /api/stats", h.Stats)

	if h.player != nil {
		h.router.Handle("GET /ws/player", h.player)
	}
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "moodqueue is live 🎶"})
}
