package redis

import (
	"context"
	"fmt"

	"github.com/lessonplay/server/internal/repository/playback"
)

func (r repo) getPositionKey(userID, lessonID string) string {
	return "user:" + userID + ":lesson:" + lessonID + ":position"
}

// SetPosition writes only the position fields so a cached completion flag
// survives periodic saves.
func (r repo) SetPosition(ctx context.Context, params *playback.SetPositionParams) error {
	positionKey := r.getPositionKey(params.UserID, params.LessonID)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, positionKey, "position_millis", params.PositionMillis, "updated_at", params.UpdatedAt)
	pipe.Expire(ctx, positionKey, r.expireDuration)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}

	return nil
}

func (r repo) GetPosition(ctx context.Context, params *playback.GetPositionParams) (playback.Position, error) {
	positionKey := r.getPositionKey(params.UserID, params.LessonID)

	cmd := r.rc.HGetAll(ctx, positionKey)
	res, err := cmd.Result()
	if err != nil {
		return playback.Position{}, fmt.Errorf("failed to get position: %w", err)
	}
	if len(res) == 0 {
		return playback.Position{}, playback.ErrPositionNotFound
	}

	var position playback.Position
	if err := cmd.Scan(&position); err != nil {
		return playback.Position{}, fmt.Errorf("failed to scan position: %w", err)
	}

	r.rc.Expire(ctx, positionKey, r.expireDuration)

	return position, nil
}

func (r repo) MarkCompleted(ctx context.Context, params *playback.MarkCompletedParams) error {
	positionKey := r.getPositionKey(params.UserID, params.LessonID)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, positionKey, "completed", true, "updated_at", params.UpdatedAt)
	pipe.Expire(ctx, positionKey, r.expireDuration)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	return nil
}

func (r repo) RemovePosition(ctx context.Context, params *playback.RemovePositionParams) error {
	positionKey := r.getPositionKey(params.UserID, params.LessonID)

	res, err := r.rc.Del(ctx, positionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to remove position: %w", err)
	}
	if res == 0 {
		return playback.ErrPositionNotFound
	}

	return nil
}
