// Package playback implements the playback session state machine.
package playback

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
)

// DefaultVolume is the volume of a fresh session.
const DefaultVolume = 50

// Position is the input of the pure index transitions.
type Position struct {
	Len     int
	Index   int
	Shuffle bool
	Repeat  bool
}

// NextIndex returns the index after p and whether the current track restarts.
func NextIndex(p Position, rng *rand.Rand) (next int, restart bool) {
	if p.Len <= 0 {
		return 0, false
	}
	if p.Repeat {
		return p.Index, true
	}
	if p.Shuffle {
		return shuffleIndex(p, rng), false
	}
	return (p.Index + 1) % p.Len, false
}

// PrevIndex returns the index before p. Repeat is not consulted.
func PrevIndex(p Position, rng *rand.Rand) int {
	if p.Len <= 0 {
		return 0
	}
	if p.Shuffle {
		return shuffleIndex(p, rng)
	}
	return (p.Index - 1 + p.Len) % p.Len
}

func shuffleIndex(p Position, rng *rand.Rand) int {
	if p.Len == 1 {
		return p.Index
	}
	j := rng.Intn(p.Len - 1)
	if j >= p.Index {
		j++
	}
	return j
}

// State is a read-only snapshot of a session.
type State struct {
	Queue     []domain.Track `json:"queue"`
	Index     int            `json:"index"`
	IsPlaying bool           `json:"isPlaying"`
	Shuffle   bool           `json:"shuffle"`
	Repeat    bool           `json:"repeat"`
	Volume    int            `json:"volume"`
}

// Session holds playback state for one listener. It has a single owner and
// is not safe for concurrent use.
type Session struct {
	queue   domain.Queue
	index   int
	playing bool
	shuffle bool
	repeat  bool
	volume  int
	rng     *rand.Rand
}

// NewSession starts a paused session over q. A nil rng is time seeded.
func NewSession(q domain.Queue, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{rng: rng}
	s.reset(q)
	return s
}

func (s *Session) reset(q domain.Queue) {
	s.queue = q
	s.index = 0
	s.playing = false
	s.shuffle = false
	s.repeat = false
	s.volume = DefaultVolume
}

// Load replaces the queue and rewinds to a paused first track. Shuffle,
// repeat and volume are kept.
func (s *Session) Load(q domain.Queue) {
	s.queue = q
	s.index = 0
	s.playing = false
}

// Clear discards the queue and resets every field to its default, bound to
// the default queue.
func (s *Session) Clear() {
	s.reset(fallback.DefaultQueue())
}

func (s *Session) position() Position {
	return Position{Len: s.queue.Len(), Index: s.index, Shuffle: s.shuffle, Repeat: s.repeat}
}

// SelectTrack jumps to index i and plays. An out of range index panics.
func (s *Session) SelectTrack(i int) {
	if i < 0 || i >= s.queue.Len() {
		panic(fmt.Sprintf("playback: select index %d out of range [0,%d)", i, s.queue.Len()))
	}
	s.index = i
	s.playing = true
}

// Advance moves to the next track and plays. restart is true when repeat
// pinned the index and the current track should start over.
func (s *Session) Advance() (restart bool) {
	s.index, restart = NextIndex(s.position(), s.rng)
	s.playing = true
	return restart
}

// Retreat moves to the previous track and plays.
func (s *Session) Retreat() {
	s.index = PrevIndex(s.position(), s.rng)
	s.playing = true
}

func (s *Session) TogglePlay() {
	s.playing = !s.playing
}

func (s *Session) SetPlaying(playing bool) {
	s.playing = playing
}

func (s *Session) SetShuffle(on bool) {
	s.shuffle = on
}

func (s *Session) SetRepeat(on bool) {
	s.repeat = on
}

// SetVolume clamps v to 0..100.
func (s *Session) SetVolume(v int) {
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	s.volume = v
}

func (s *Session) Index() int          { return s.index }
func (s *Session) IsPlaying() bool     { return s.playing }
func (s *Session) Shuffle() bool       { return s.shuffle }
func (s *Session) Repeat() bool        { return s.repeat }
func (s *Session) Volume() int         { return s.volume }
func (s *Session) Queue() domain.Queue { return s.queue }

// Current returns the track at the current index.
func (s *Session) Current() domain.Track {
	return s.queue.At(s.index)
}

// Snapshot copies the session state.
func (s *Session) Snapshot() State {
	return State{
		Queue:     s.queue.Tracks(),
		Index:     s.index,
		IsPlaying: s.playing,
		Shuffle:   s.shuffle,
		Repeat:    s.repeat,
		Volume:    s.volume,
	}
}
