package drivemeta

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrFileNotFound = fmt.Errorf("file not found")

type FileData struct {
	Title string `json:"title"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches display metadata for a Drive file from its preview page.
// Metadata is cosmetic (player header title); callers treat failure as
// non-fatal.
func (c *Client) Get(ctx context.Context, fileID string) (*FileData, error) {
	url := fmt.Sprintf("https://drive.google.com/file/d/%s/preview", fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preview page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrFileNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	title, err := parseTitle(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse preview page: %w", err)
	}

	return &FileData{Title: stripSuffix(title)}, nil
}

func stripSuffix(title string) string {
	title = strings.TrimSuffix(title, " - Google Drive")

	return strings.TrimSpace(title)
}
