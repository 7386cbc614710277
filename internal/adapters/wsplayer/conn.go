package wsplayer

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/core/playback"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = 30 * time.Second
	MaxMessageSize = 64 * 1024

	sendBuffer = 64
)

// ErrClosed is returned by player commands after the connection closed.
var ErrClosed = errors.New("wsplayer: connection closed")

// Conn is one browser player connection. It implements ports.Player by
// turning commands into JSON messages.
type Conn struct {
	ID string

	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       *zap.Logger
}

var _ ports.Player = (*Conn)(nil)

func newConn(id string, ws *websocket.Conn, log *zap.Logger) *Conn {
	return &Conn{
		ID:   id,
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

func (c *Conn) Load(mediaID string) error {
	return c.sendJSON(ServerMessage{Type: MsgLoad, MediaID: mediaID})
}

func (c *Conn) Play() error {
	return c.sendJSON(ServerMessage{Type: MsgPlay})
}

func (c *Conn) Pause() error {
	return c.sendJSON(ServerMessage{Type: MsgPause})
}

func (c *Conn) SeekTo(seconds float64) error {
	return c.sendJSON(ServerMessage{Type: MsgSeek, Seconds: &seconds})
}

func (c *Conn) SetVolume(volume int) error {
	return c.sendJSON(ServerMessage{Type: MsgVolume, Value: &volume})
}

func (c *Conn) sendState(st playback.State) {
	if err := c.sendJSON(ServerMessage{Type: MsgState, State: &st}); err != nil {
		c.log.Debug("state not sent", zap.Error(err))
	}
}

func (c *Conn) sendAlert(msg string) {
	if err := c.sendJSON(ServerMessage{Type: MsgAlert, Message: msg}); err != nil {
		c.log.Debug("alert not sent", zap.Error(err))
	}
}

func (c *Conn) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		c.log.Warn("send buffer full, closing connection")
		c.Close("send buffer full")
		return ErrClosed
	}
}

// Close shuts the connection down once.
func (c *Conn) Close(reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
			time.Now().Add(WriteWait),
		)
		_ = c.ws.Close()
		c.log.Info("player disconnected", zap.String("reason", reason))
	})
}

// readPump decodes client messages and hands them to handle until the
// connection fails or closes.
func (c *Conn) readPump(handle func(ClientMessage)) {
	c.ws.SetReadLimit(MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.log.Warn("invalid client message", zap.ByteString("data", data))
			c.sendAlert("invalid message")
			continue
		}
		handle(msg)
	}
}

// writePump is the only writer of data frames.
func (c *Conn) writePump() {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Warn("websocket write failed", zap.Error(err))
				c.Close("write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close("ping failed")
				return
			}
		}
	}
}
