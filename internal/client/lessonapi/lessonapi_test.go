package lessonapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLesson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/c1/player/l1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"title":    "Intro",
				"type":     "video",
				"videoUrl": "https://drive.google.com/file/d/abc123/view",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lesson, err := c.GetLesson(context.Background(), "tok", "c1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "Intro", lesson.Title)
	assert.Equal(t, "video", lesson.Type)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/view", lesson.VideoURL)
}

func TestGetLessonNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetLesson(context.Background(), "tok", "c1", "missing")
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestGetProgressMissingRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	progress, err := c.GetProgress(context.Background(), "tok", "c1", "l1")
	require.NoError(t, err)
	assert.Zero(t, progress.PositionMillis)
	assert.False(t, progress.Completed)
}

func TestSaveProgress(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/courses/c1/lesson/l1/progress", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.SaveProgress(context.Background(), "tok", "c1", "l1", 42500))
	assert.Equal(t, float64(42500), got["progress"])
}

func TestMarkCompleted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses/c1/lesson/l1/complete", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.MarkCompleted(context.Background(), "tok", "c1", "l1"))
	assert.Equal(t, "l1", got["lessonId"])
}

func TestBackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "enrollment required",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.SaveProgress(context.Background(), "tok", "c1", "l1", 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enrollment required")
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetLesson(context.Background(), "bad", "c1", "l1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
