package wsplayer

import (
	"github.com/ewilliams-labs/moodqueue/internal/core/domain"
	"github.com/ewilliams-labs/moodqueue/internal/core/playback"
)

// Server to client message types.
const (
	MsgLoad   = "load"
	MsgPlay   = "play"
	MsgPause  = "pause"
	MsgSeek   = "seek"
	MsgVolume = "volume"
	MsgState  = "state"
	MsgAlert  = "alert"
)

// Client to server action types. Player lifecycle events use the
// ports.EventType names.
const (
	ActNext     = "next"
	ActPrevious = "previous"
	ActSelect   = "select"
	ActToggle   = "toggle"
	ActVolume   = "volume"
	ActShuffle  = "shuffle"
	ActRepeat   = "repeat"
	ActQueue    = "queue"
	ActClear    = "clear"
)

// ServerMessage is a command or notification for the browser player.
type ServerMessage struct {
	Type    string          `json:"type"`
	MediaID string          `json:"videoId,omitempty"`
	Seconds *float64        `json:"seconds,omitempty"`
	Value   *int            `json:"value,omitempty"`
	State   *playback.State `json:"state,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ClientMessage is a player event or user action from the browser.
type ClientMessage struct {
	Type  string         `json:"type"`
	Code  int            `json:"code,omitempty"`
	Index int            `json:"index,omitempty"`
	Value int            `json:"value,omitempty"`
	On    bool           `json:"on,omitempty"`
	Songs []domain.Track `json:"songs,omitempty"`
}
