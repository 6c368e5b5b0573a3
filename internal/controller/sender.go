package controller

import (
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// clientConn serializes writes to one websocket connection. The session's
// timers, the watermark loop, and the read-loop handlers all write to it.
type clientConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newClientConn(conn *websocket.Conn) *clientConn {
	return &clientConn{conn: conn}
}

func (c *clientConn) send(output *Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(output)
}

func (c *clientConn) close() error {
	return c.conn.Close()
}
