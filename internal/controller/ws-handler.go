package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/lessonplay/server/internal/domain"
	"github.com/lessonplay/server/internal/service/playback"
	"github.com/lessonplay/server/internal/shell"
	"github.com/lessonplay/server/pkg/ctxlogger"
)

// connState is the per-connection presentation state living alongside the
// playback session.
type connState struct {
	conn       *clientConn
	watermark  *shell.WatermarkScheduler
	controls   *shell.Controls
	fullscreen shell.Fullscreen
	cancel     context.CancelFunc
}

func (c controller) play(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	courseID := query.Get("course-id")
	lessonID := query.Get("lesson-id")
	authToken := query.Get("auth-token")
	viewer := query.Get("viewer")

	if courseID == "" || lessonID == "" {
		c.logger.DebugContext(r.Context(), "missing course or lesson id")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	clientID := c.generator.GenerateRandomString(16)
	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("client_id", clientID))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := newClientConn(conn)
	defer client.close()

	state := &connState{
		conn: client,
		controls: shell.NewControls(func(visible bool) {
			client.send(&Output{
				Type:    "CONTROLS",
				Payload: map[string]any{"visible": visible},
			})
		}),
		watermark: shell.NewWatermarkScheduler(viewer, c.cfg.WatermarkInterval, func(update shell.WatermarkUpdate) {
			client.send(&Output{Type: "WATERMARK", Payload: update})
		}),
		cancel: cancel,
	}
	defer state.controls.Stop()

	startResp, err := c.playbackService.StartSession(ctx, &playback.StartSessionParams{
		ClientID:  clientID,
		AuthToken: authToken,
		CourseID:  courseID,
		LessonID:  lessonID,
		Player:    newWSPlayer(client),
		Callbacks: playback.SessionCallbacks{
			OnPhaseChange: func(phase playback.Phase) {
				client.send(&Output{
					Type:    "STATE_CHANGED",
					Payload: map[string]any{"phase": phase.String()},
				})
			},
			OnError: func(playbackErr *domain.PlaybackError) {
				client.send(&Output{
					Type: "ERROR",
					Payload: map[string]any{
						"kind":      playbackErr.Kind,
						"message":   playbackErr.Message,
						"hint":      playbackErr.Hint(),
						"retryable": playbackErr.Retryable,
					},
				})
			},
		},
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to start session", "error", err)
		client.send(&Output{
			Type:    "ERROR",
			Payload: map[string]any{"message": err.Error()},
		})
		return
	}
	defer func() {
		if err := c.playbackService.EndSession(context.WithoutCancel(ctx), clientID); err != nil {
			c.logger.DebugContext(ctx, "failed to end session", "error", err)
		}
	}()

	if err := client.send(&Output{
		Type: "SESSION_STARTED",
		Payload: map[string]any{
			"lesson":            startResp.Lesson,
			"endpoint":          startResp.Endpoint,
			"resume_position":   startResp.ResumePosition,
			"already_completed": startResp.AlreadyCompleted,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write json", "error", err)
		return
	}

	session, err := c.playbackService.GetSession(clientID)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to get session", "error", err)
		return
	}
	session.Start(ctx, startResp.Endpoint, startResp.ResumePosition, startResp.AlreadyCompleted)

	go state.watermark.Run(ctx)

	ctx = context.WithValue(ctx, clientIDCtxKey, clientID)
	ctx = context.WithValue(ctx, connStateCtxKey, state)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			c.logger.InfoContext(ctx, "failed to serve conn", "error", err)
		}
	}
}
