package controller

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/lessonplay/server/internal/domain"
	"github.com/lessonplay/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New(c.onWSError)

	mux.Handle("ALIVE", wsrouter.Typed(c.handleAlive))

	// player feedback
	mux.Handle("STATUS", wsrouter.Typed(c.handleStatus))
	mux.Handle("LOADED", wsrouter.Typed(c.handleLoaded))
	mux.Handle("LOAD_ERROR", wsrouter.Typed(c.handleLoadError))

	// transport
	mux.Handle("PLAY", wsrouter.Typed(c.handlePlay))
	mux.Handle("PAUSE", wsrouter.Typed(c.handlePause))
	mux.Handle("SEEK_TO", wsrouter.Typed(c.handleSeekTo))
	mux.Handle("SEEK_BY", wsrouter.Typed(c.handleSeekBy))

	// presentation
	mux.Handle("LAYOUT", wsrouter.Typed(c.handleLayout))
	mux.Handle("TOUCH", wsrouter.Typed(c.handleTouch))
	mux.Handle("FULLSCREEN", wsrouter.Typed(c.handleFullscreen))

	return mux
}

// onWSError reports handler failures back to the client so a bad message is
// never answered with silence.
func (c controller) onWSError(ctx context.Context, _ *websocket.Conn, _ string, err error) {
	c.logger.InfoContext(ctx, "failed to handle websocket message",
		"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
		"error", err,
	)

	state := c.getConnStateFromCtx(ctx)
	if state == nil {
		return
	}

	kind := domain.ClassifyError(err.Error())
	state.conn.send(&Output{
		Type: "ERROR",
		Payload: map[string]any{
			"kind":      kind,
			"message":   err.Error(),
			"retryable": kind == domain.ErrKindNetwork || kind == domain.ErrKindUnknown,
		},
	})
}
