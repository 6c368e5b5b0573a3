package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/lessonplay/server/internal/domain"
	"github.com/lessonplay/server/internal/service/playback"
	"github.com/lessonplay/server/internal/shell"
)

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

func (c controller) session(ctx context.Context) (*playback.Session, error) {
	session, err := c.playbackService.GetSession(c.getClientIDFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

type StatusInput struct {
	PositionMillis int64 `json:"position_millis"`
	DurationMillis int64 `json:"duration_millis"`
	IsPlaying      bool  `json:"is_playing"`
	IsLoaded       bool  `json:"is_loaded"`
	DidJustFinish  bool  `json:"did_just_finish"`
}

func (c controller) handleStatus(ctx context.Context, _ *websocket.Conn, input StatusInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.OnStatus(ctx, domain.PlaybackStatus{
		PositionMillis: input.PositionMillis,
		DurationMillis: input.DurationMillis,
		IsPlaying:      input.IsPlaying,
		IsLoaded:       input.IsLoaded,
		DidJustFinish:  input.DidJustFinish,
	})

	return nil
}

type LoadedInput struct {
	DurationMillis int64 `json:"duration_millis"`
}

func (c controller) handleLoaded(ctx context.Context, _ *websocket.Conn, input LoadedInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.OnLoaded(ctx, input.DurationMillis)

	return nil
}

type LoadErrorInput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (c controller) handleLoadError(ctx context.Context, _ *websocket.Conn, input LoadErrorInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.OnPlaybackError(ctx, domain.ErrorKind(input.Kind), input.Message)

	return nil
}

func (c controller) handlePlay(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.Play(ctx)

	return nil
}

func (c controller) handlePause(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.Pause(ctx)

	return nil
}

type SeekToInput struct {
	PositionMillis int64 `json:"position_millis"`
}

func (c controller) handleSeekTo(ctx context.Context, _ *websocket.Conn, input SeekToInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.SeekAbsolute(ctx, input.PositionMillis)

	return nil
}

type SeekByInput struct {
	DeltaMillis int64 `json:"delta_millis"`
}

func (c controller) handleSeekBy(ctx context.Context, _ *websocket.Conn, input SeekByInput) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	session.SeekRelative(ctx, input.DeltaMillis)

	return nil
}

type LayoutInput struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (c controller) handleLayout(ctx context.Context, _ *websocket.Conn, input LayoutInput) error {
	state := c.getConnStateFromCtx(ctx)
	if state == nil {
		return fmt.Errorf("no connection state")
	}

	state.watermark.SetContainerSize(input.Width, input.Height)

	return nil
}

func (c controller) handleTouch(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	state := c.getConnStateFromCtx(ctx)
	if state == nil {
		return fmt.Errorf("no connection state")
	}

	state.controls.Touch()

	return nil
}

type FullscreenInput struct {
	Active bool `json:"active"`
}

func (c controller) handleFullscreen(ctx context.Context, _ *websocket.Conn, input FullscreenInput) error {
	state := c.getConnStateFromCtx(ctx)
	if state == nil {
		return fmt.Errorf("no connection state")
	}

	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	snapshot := session.Snapshot()

	var orientation shell.Orientation
	if input.Active {
		orientation = state.fullscreen.Enter(snapshot.PositionMillis, snapshot.IsPlaying)
	} else {
		orientation = state.fullscreen.Exit(snapshot.PositionMillis, snapshot.IsPlaying)
	}

	capture := state.fullscreen.Capture()

	return state.conn.send(&Output{
		Type: "ORIENTATION",
		Payload: map[string]any{
			"orientation":      orientation,
			"position_millis":  capture.PositionMillis,
			"position_display": shell.FormatTime(capture.PositionMillis),
			"resume_playing":   capture.WasPlaying,
			"reapply_delay_ms": state.fullscreen.ReapplyDelay().Milliseconds(),
		},
	})
}
