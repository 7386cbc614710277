package ports

// EventType enumerates player lifecycle events.
type EventType string

const (
	EventReady   EventType = "ready"
	EventPlaying EventType = "playing"
	EventPaused  EventType = "paused"
	EventEnded   EventType = "ended"
	EventError   EventType = "error"
)

// PlayerEvent is emitted by an embedded player. Code is set for EventError.
type PlayerEvent struct {
	Type EventType
	Code int
}

// Player is an embeddable external video player.
type Player interface {
	Load(mediaID string) error
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	SetVolume(volume int) error
}
