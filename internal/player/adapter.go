// Package player binds a playback session to an external embedded player.
// Player events and user commands are funneled through a single-worker
// queue so session mutations never run concurrently.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/playback"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
	"github.com/ewilliams-labs/moodqueue/internal/worker"
)

const (
	DefaultEndedDelay = 500 * time.Millisecond
	DefaultErrorDelay = 2 * time.Second
	defaultQueueSize  = 64
)

// Config tunes the adapter.
type Config struct {
	EndedDelay time.Duration
	ErrorDelay time.Duration
	// StrictErrors stops on player errors and raises an alert instead of
	// skipping. Used for manual single-song testing.
	StrictErrors bool
	QueueSize    int
	OnState      func(playback.State)
	OnAlert      func(message string)
}

type scheduleFunc func(d time.Duration, f func())

// Adapter owns one session and drives one player.
type Adapter struct {
	player  ports.Player
	session *playback.Session
	pool    *worker.Pool
	cfg     Config
	log     *zap.Logger
	after   scheduleFunc

	// generation is only touched on the worker goroutine.
	generation uint64

	mu    sync.RWMutex
	state playback.State
}

// NewAdapter wires an adapter. Call Start before submitting anything.
func NewAdapter(p ports.Player, session *playback.Session, cfg Config, log *zap.Logger) *Adapter {
	if cfg.EndedDelay <= 0 {
		cfg.EndedDelay = DefaultEndedDelay
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = DefaultErrorDelay
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		player:  p,
		session: session,
		pool:    worker.NewPool(cfg.QueueSize, log),
		cfg:     cfg,
		log:     log,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		state: session.Snapshot(),
	}
}

// Start launches the event worker.
func (a *Adapter) Start() {
	a.pool.Start(1)
}

// Stop drains queued events. Pending delayed advances are dropped.
func (a *Adapter) Stop() {
	a.pool.Stop()
}

// Flush blocks until every event queued before it has been handled.
func (a *Adapter) Flush() {
	done := make(chan struct{})
	if !a.pool.Submit(func(context.Context) { close(done) }) {
		return
	}
	<-done
}

// State returns the last published session snapshot.
func (a *Adapter) State() playback.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// HandleEvent queues a player lifecycle event.
func (a *Adapter) HandleEvent(ev ports.PlayerEvent) bool {
	return a.submit(func() { a.onEvent(ev) })
}

func (a *Adapter) Next() bool {
	return a.submit(func() {
		a.generation++
		a.advance()
	})
}

func (a *Adapter) Previous() bool {
	return a.submit(func() {
		a.generation++
		a.session.Retreat()
		a.loadAndPlay()
	})
}

// Select jumps to index i. Out of range indices from clients are ignored.
func (a *Adapter) Select(i int) bool {
	return a.submit(func() {
		if i < 0 || i >= a.session.Queue().Len() {
			a.log.Warn("ignoring out of range select", zap.Int("index", i), zap.Int("len", a.session.Queue().Len()))
			return
		}
		a.generation++
		a.session.SelectTrack(i)
		a.loadAndPlay()
	})
}

func (a *Adapter) TogglePlay() bool {
	return a.submit(func() {
		a.session.TogglePlay()
		if a.session.IsPlaying() {
			a.call("play", a.player.Play())
		} else {
			a.call("pause", a.player.Pause())
		}
	})
}

func (a *Adapter) SetVolume(v int) bool {
	return a.submit(func() {
		a.session.SetVolume(v)
		a.call("volume", a.player.SetVolume(a.session.Volume()))
	})
}

func (a *Adapter) SetShuffle(on bool) bool {
	return a.submit(func() { a.session.SetShuffle(on) })
}

func (a *Adapter) SetRepeat(on bool) bool {
	return a.submit(func() { a.session.SetRepeat(on) })
}

// LoadQueue replaces the session queue and cues its first track.
func (a *Adapter) LoadQueue(q domain.Queue) bool {
	return a.submit(func() {
		a.generation++
		a.session.Load(q)
		a.call("load", a.player.Load(a.session.Current().MediaID))
	})
}

// Clear resets the session to the default queue.
func (a *Adapter) Clear() bool {
	return a.submit(func() {
		a.generation++
		a.session.Clear()
		a.call("pause", a.player.Pause())
		a.call("load", a.player.Load(a.session.Current().MediaID))
	})
}

func (a *Adapter) submit(fn func()) bool {
	ok := a.pool.Submit(func(context.Context) {
		fn()
		a.publish()
	})
	if !ok {
		a.log.Warn("player event dropped")
	}
	return ok
}

func (a *Adapter) onEvent(ev ports.PlayerEvent) {
	switch ev.Type {
	case ports.EventReady:
		a.call("volume", a.player.SetVolume(a.session.Volume()))
		a.call("load", a.player.Load(a.session.Current().MediaID))
		if a.session.IsPlaying() {
			a.call("play", a.player.Play())
		}
	case ports.EventPlaying:
		a.session.SetPlaying(true)
	case ports.EventPaused:
		a.session.SetPlaying(false)
	case ports.EventEnded:
		a.session.SetPlaying(false)
		a.scheduleAdvance(a.cfg.EndedDelay)
	case ports.EventError:
		reason := ErrorReason(ev.Code)
		a.log.Warn("player error",
			zap.Int("code", ev.Code),
			zap.String("reason", reason),
			zap.String("media_id", a.session.Current().MediaID),
		)
		a.session.SetPlaying(false)
		if a.cfg.StrictErrors {
			a.generation++
			a.alert(fmt.Sprintf("Cannot play %q: %s", a.session.Current().Title, reason))
			return
		}
		a.scheduleAdvance(a.cfg.ErrorDelay)
	default:
		a.log.Debug("ignoring unknown player event", zap.String("type", string(ev.Type)))
	}
}

// scheduleAdvance advances after d unless another command bumps the
// generation first.
func (a *Adapter) scheduleAdvance(d time.Duration) {
	a.generation++
	gen := a.generation
	a.after(d, func() {
		a.submit(func() {
			if gen != a.generation {
				return
			}
			a.advance()
		})
	})
}

func (a *Adapter) advance() {
	if a.session.Advance() {
		a.call("seek", a.player.SeekTo(0))
		a.call("play", a.player.Play())
		return
	}
	a.loadAndPlay()
}

func (a *Adapter) loadAndPlay() {
	a.call("load", a.player.Load(a.session.Current().MediaID))
	a.call("play", a.player.Play())
}

func (a *Adapter) call(op string, err error) {
	if err != nil {
		a.log.Warn("player command failed", zap.String("op", op), zap.Error(err))
	}
}

func (a *Adapter) alert(msg string) {
	if a.cfg.OnAlert != nil {
		a.cfg.OnAlert(msg)
	}
}

func (a *Adapter) publish() {
	st := a.session.Snapshot()
	a.mu.Lock()
	a.state = st
	a.mu.Unlock()
	if a.cfg.OnState != nil {
		a.cfg.OnState(st)
	}
}

// ErrorReason describes an embedded player error code.
func ErrorReason(code int) string {
	switch code {
	case 2:
		return "invalid video id"
	case 5:
		return "video cannot be played in the HTML5 player"
	case 100:
		return "video not found or removed"
	case 101, 150:
		return "embedding disabled by the video owner"
	default:
		return fmt.Sprintf("unknown player error %d", code)
	}
}
