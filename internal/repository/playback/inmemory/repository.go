package inmemory

import (
	"context"
	"sync"

	"github.com/lessonplay/server/internal/repository/playback"
)

type repo struct {
	mu        sync.RWMutex
	positions map[string]playback.Position
}

func NewRepo() *repo {
	return &repo{
		positions: make(map[string]playback.Position),
	}
}

func (r *repo) getPositionKey(userID, lessonID string) string {
	return userID + ":" + lessonID
}

func (r *repo) SetPosition(_ context.Context, params *playback.SetPositionParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.getPositionKey(params.UserID, params.LessonID)
	position := r.positions[key]
	position.PositionMillis = params.PositionMillis
	position.UpdatedAt = params.UpdatedAt
	r.positions[key] = position

	return nil
}

func (r *repo) GetPosition(_ context.Context, params *playback.GetPositionParams) (playback.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position, ok := r.positions[r.getPositionKey(params.UserID, params.LessonID)]
	if !ok {
		return playback.Position{}, playback.ErrPositionNotFound
	}

	return position, nil
}

func (r *repo) MarkCompleted(_ context.Context, params *playback.MarkCompletedParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.getPositionKey(params.UserID, params.LessonID)
	position := r.positions[key]
	position.Completed = true
	position.UpdatedAt = params.UpdatedAt
	r.positions[key] = position

	return nil
}

func (r *repo) RemovePosition(_ context.Context, params *playback.RemovePositionParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.getPositionKey(params.UserID, params.LessonID)
	if _, ok := r.positions[key]; !ok {
		return playback.ErrPositionNotFound
	}

	delete(r.positions, key)

	return nil
}
