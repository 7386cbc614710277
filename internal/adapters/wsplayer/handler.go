// Package wsplayer bridges a browser-embedded video player over a
// websocket. Each connection gets its own playback session and player
// adapter.
package wsplayer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
	"github.com/ewilliams-labs/moodqueue/internal/core/playback"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
	"github.com/ewilliams-labs/moodqueue/internal/player"
)

// QueueSource returns the queue a new connection starts with.
type QueueSource func(ctx context.Context) domain.Queue

// Handler upgrades requests to player connections.
type Handler struct {
	upgrader websocket.Upgrader
	cfg      player.Config
	initial  QueueSource
	log      *zap.Logger

	mu    sync.Mutex
	conns map[string]*Conn
}

// NewHandler builds a Handler. cfg.OnState and cfg.OnAlert are replaced per
// connection. A nil initial starts every connection on the default queue.
func NewHandler(cfg player.Config, initial QueueSource, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if initial == nil {
		initial = func(context.Context) domain.Queue { return fallback.DefaultQueue() }
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// any origin is accepted
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cfg:     cfg,
		initial: initial,
		log:     log.With(zap.String("adapter", "wsplayer")),
		conns:   make(map[string]*Conn),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	log := h.log.With(zap.String("conn_id", id))
	conn := newConn(id, ws, log)

	cfg := h.cfg
	cfg.OnState = conn.sendState
	cfg.OnAlert = conn.sendAlert

	session := playback.NewSession(h.initial(r.Context()), nil)
	adapter := player.NewAdapter(conn, session, cfg, log)
	adapter.Start()

	h.track(conn)
	log.Info("player connected", zap.String("remote", r.RemoteAddr))

	go conn.writePump()
	conn.sendState(adapter.State())

	conn.readPump(func(msg ClientMessage) {
		h.dispatch(log, conn, adapter, msg)
	})

	conn.Close("client gone")
	adapter.Stop()
	h.untrack(conn)
}

// dispatch routes one client message to the adapter.
func (h *Handler) dispatch(log *zap.Logger, conn *Conn, a *player.Adapter, msg ClientMessage) {
	switch msg.Type {
	case string(ports.EventReady), string(ports.EventPlaying), string(ports.EventPaused), string(ports.EventEnded):
		a.HandleEvent(ports.PlayerEvent{Type: ports.EventType(msg.Type)})
	case string(ports.EventError):
		a.HandleEvent(ports.PlayerEvent{Type: ports.EventError, Code: msg.Code})
	case ActNext:
		a.Next()
	case ActPrevious:
		a.Previous()
	case ActSelect:
		a.Select(msg.Index)
	case ActToggle:
		a.TogglePlay()
	case ActVolume:
		a.SetVolume(msg.Value)
	case ActShuffle:
		a.SetShuffle(msg.On)
	case ActRepeat:
		a.SetRepeat(msg.On)
	case ActQueue:
		q, err := clientQueue(msg.Songs)
		if err != nil {
			log.Warn("rejecting queue", zap.Error(err))
			conn.sendAlert("invalid queue")
			return
		}
		a.LoadQueue(q)
	case ActClear:
		a.Clear()
	default:
		log.Debug("ignoring client message", zap.String("type", msg.Type))
	}
}

// clientQueue validates every client-sent song the way resolved tracks are.
func clientQueue(songs []domain.Track) (domain.Queue, error) {
	tracks := make([]domain.Track, 0, len(songs))
	for i, s := range songs {
		t, err := domain.NewTrack(s.Title, s.Artist, s.MediaID, s.ThumbnailURL)
		if err != nil {
			return domain.Queue{}, fmt.Errorf("song %d: %w", i, err)
		}
		tracks = append(tracks, t)
	}
	return domain.NewQueue(tracks)
}

// Close disconnects every open player.
func (h *Handler) Close() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close("server shutting down")
	}
}

// Connections returns the number of open players.
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Handler) track(c *Conn) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
}

func (h *Handler) untrack(c *Conn) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	h.mu.Unlock()
}
