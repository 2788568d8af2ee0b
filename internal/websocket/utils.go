package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a gorilla connection with a write mutex. gorilla/websocket
// allows only one concurrent writer per connection; the feed handler writes
// from both its relay loop and its reader goroutine (pong replies), so every
// write goes through the lock.
type Conn struct {
	raw *websocket.Conn
	mu  sync.Mutex
}

// Wrap adopts an upgraded connection.
func Wrap(raw *websocket.Conn) *Conn {
	return &Conn{raw: raw}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.raw.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// WritePrediction sends a prediction event, splicing the pre-encoded
// payload into the envelope without re-marshalling it.
func (c *Conn) WritePrediction(payload []byte) error {
	msg := struct {
		Event Event           `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{Event: EventPrediction, Data: payload}
	return c.WriteTyped(msg)
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline. Reads stay single-goroutine; only writes
// are serialized here.
func (c *Conn) ReadJSON(v interface{}) error {
	c.raw.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return c.raw.ReadJSON(v)
}
