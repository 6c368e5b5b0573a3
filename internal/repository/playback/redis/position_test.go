package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lessonplay/server/internal/repository/playback"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *repo {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	return NewRepo(rc, 10*time.Minute)
}

func TestPosition(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	assert.ErrorIs(t, err, playback.ErrPositionNotFound)

	err = r.SetPosition(ctx, &playback.SetPositionParams{
		UserID:         "user-1",
		LessonID:       "lesson-1",
		PositionMillis: 42500,
		UpdatedAt:      1700000000,
	})
	require.NoError(t, err)

	position, err := r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42500), position.PositionMillis)
	assert.False(t, position.Completed)
	assert.Equal(t, int64(1700000000), position.UpdatedAt)

	err = r.MarkCompleted(ctx, &playback.MarkCompletedParams{
		UserID:    "user-1",
		LessonID:  "lesson-1",
		UpdatedAt: 1700000060,
	})
	require.NoError(t, err)

	position, err = r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)
	assert.True(t, position.Completed)
	assert.Equal(t, int64(42500), position.PositionMillis, "position must survive completion")

	err = r.RemovePosition(ctx, &playback.RemovePositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)

	_, err = r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	assert.ErrorIs(t, err, playback.ErrPositionNotFound)

	err = r.RemovePosition(ctx, &playback.RemovePositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	assert.ErrorIs(t, err, playback.ErrPositionNotFound)
}

func TestPositionIsolatedPerLesson(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetPosition(ctx, &playback.SetPositionParams{
		UserID:         "user-1",
		LessonID:       "lesson-1",
		PositionMillis: 1000,
	}))
	require.NoError(t, r.SetPosition(ctx, &playback.SetPositionParams{
		UserID:         "user-1",
		LessonID:       "lesson-2",
		PositionMillis: 2000,
	}))

	position, err := r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-2",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), position.PositionMillis)
}

func TestSetPositionKeepsCompletionFlag(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.MarkCompleted(ctx, &playback.MarkCompletedParams{
		UserID:    "user-1",
		LessonID:  "lesson-1",
		UpdatedAt: 1700000000,
	}))

	require.NoError(t, r.SetPosition(ctx, &playback.SetPositionParams{
		UserID:         "user-1",
		LessonID:       "lesson-1",
		PositionMillis: 550000,
		UpdatedAt:      1700000030,
	}))

	position, err := r.GetPosition(ctx, &playback.GetPositionParams{
		UserID:   "user-1",
		LessonID: "lesson-1",
	})
	require.NoError(t, err)
	assert.True(t, position.Completed, "periodic save must not erase completion")
	assert.Equal(t, int64(550000), position.PositionMillis)
	assert.Equal(t, int64(1700000030), position.UpdatedAt)
}
