package controller

import "context"

// wsPlayer drives the client-side player over the session socket. Each
// method is one transport instruction; the client acknowledges with LOADED
// and STATUS messages.
type wsPlayer struct {
	conn *clientConn
}

func newWSPlayer(conn *clientConn) *wsPlayer {
	return &wsPlayer{conn: conn}
}

func (p *wsPlayer) Load(_ context.Context, uri string, positionMillis int64, autoPlay bool) error {
	return p.conn.send(&Output{
		Type: "LOAD",
		Payload: map[string]any{
			"url":             uri,
			"position_millis": positionMillis,
			"auto_play":       autoPlay,
		},
	})
}

func (p *wsPlayer) Play(context.Context) error {
	return p.conn.send(&Output{Type: "PLAY"})
}

func (p *wsPlayer) Pause(context.Context) error {
	return p.conn.send(&Output{Type: "PAUSE"})
}

func (p *wsPlayer) Seek(_ context.Context, positionMillis int64) error {
	return p.conn.send(&Output{
		Type: "SEEK",
		Payload: map[string]any{
			"position_millis": positionMillis,
		},
	})
}

func (p *wsPlayer) Unload(context.Context) error {
	return p.conn.send(&Output{Type: "UNLOAD"})
}
