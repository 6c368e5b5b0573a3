package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedURL = errors.New("url is not a supported drive link")
	ErrNoFileID       = errors.New("no file id found in url")
)

// ErrorKind classifies a load/playback failure reported by the client player.
// Clients that can report structure send the kind directly; free-text reports
// fall back to ClassifyError.
type ErrorKind string

const (
	ErrKindNetwork    ErrorKind = "network"
	ErrKindPermission ErrorKind = "permission"
	ErrKindFormat     ErrorKind = "format"
	ErrKindUnknown    ErrorKind = "unknown"
)

// PlaybackError is a load or playback failure with enough structure for the
// UI to pick a human-readable hint and decide whether retry is meaningful.
type PlaybackError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (e *PlaybackError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Hint returns the user-facing disambiguation for the error kind.
func (e *PlaybackError) Hint() string {
	switch e.Kind {
	case ErrKindNetwork:
		return "Please check your internet connection."
	case ErrKindPermission:
		return "Video source is not accessible. Please try again later."
	case ErrKindFormat:
		return "Video format is not supported on this device."
	}

	return "Please try again."
}

// ClassifyError maps a free-text player error message onto an ErrorKind.
// Substring matching is the fallback for players that report no structure.
func ClassifyError(message string) ErrorKind {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "network"), strings.Contains(m, "connection"), strings.Contains(m, "timed out"):
		return ErrKindNetwork
	case strings.Contains(m, "403"), strings.Contains(m, "permission"), strings.Contains(m, "denied"), strings.Contains(m, "not accessible"):
		return ErrKindPermission
	case strings.Contains(m, "format"), strings.Contains(m, "codec"), strings.Contains(m, "decoder"):
		return ErrKindFormat
	}

	return ErrKindUnknown
}
