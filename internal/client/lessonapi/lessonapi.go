// Package lessonapi is a thin client for the course backend the gateway
// fronts: lesson lookup, per-lesson progress, and completion marks.
package lessonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrUnauthorized   = errors.New("unauthorized")
)

type Lesson struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	VideoURL    string `json:"videoUrl"`
	PDFURL      string `json:"pdfUrl"`
}

type Progress struct {
	PositionMillis int64 `json:"progress"`
	Completed      bool  `json:"completed"`
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetLesson fetches the playable lesson payload.
func (c *Client) GetLesson(ctx context.Context, token, courseID, lessonID string) (Lesson, error) {
	var lesson Lesson
	path := fmt.Sprintf("/courses/%s/player/%s", courseID, lessonID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &lesson); err != nil {
		return Lesson{}, fmt.Errorf("failed to get lesson: %w", err)
	}

	return lesson, nil
}

// GetProgress fetches the saved progress record for a lesson. A missing
// record comes back as the zero Progress, not an error.
func (c *Client) GetProgress(ctx context.Context, token, courseID, lessonID string) (Progress, error) {
	var progress Progress
	path := fmt.Sprintf("/courses/%s/lesson/%s/progress", courseID, lessonID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &progress); err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return Progress{}, nil
		}

		return Progress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	return progress, nil
}

// SaveProgress stores the last watched position.
func (c *Client) SaveProgress(ctx context.Context, token, courseID, lessonID string, positionMillis int64) error {
	body := map[string]any{"progress": positionMillis}
	path := fmt.Sprintf("/courses/%s/lesson/%s/progress", courseID, lessonID)
	if err := c.do(ctx, http.MethodPost, path, token, body, nil); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

// MarkCompleted flags the lesson as completed.
func (c *Client) MarkCompleted(ctx context.Context, token, courseID, lessonID string) error {
	body := map[string]any{"lessonId": lessonID}
	path := fmt.Sprintf("/courses/%s/lesson/%s/complete", courseID, lessonID)
	if err := c.do(ctx, http.MethodPost, path, token, body, nil); err != nil {
		return fmt.Errorf("failed to mark completed: %w", err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrLessonNotFound
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		return fmt.Errorf("backend rejected request: %s", env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
