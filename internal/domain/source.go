package domain

import (
	"net/url"
	"strings"

	"github.com/lessonplay/server/pkg/drivelink"
)

// VideoSource is one lesson's playable media as stored by the authoring side.
// FileID is set iff the raw URL is a recognized external drive share link;
// it is immutable for the lifetime of a playback session.
type VideoSource struct {
	RawURL              string `json:"raw_url"`
	IsExternalDriveLink bool   `json:"is_external_drive_link"`
	FileID              string `json:"file_id,omitempty"`
}

// NewVideoSource classifies rawURL. Non-drive http(s) URLs are valid direct
// sources; a drive link without an extractable file id is a terminal
// resolution failure, distinct from a probe failure.
func NewVideoSource(rawURL string) (VideoSource, error) {
	if rawURL == "" {
		return VideoSource{}, ErrUnsupportedURL
	}

	if !drivelink.IsSupported(rawURL) {
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return VideoSource{}, ErrUnsupportedURL
		}

		return VideoSource{RawURL: rawURL}, nil
	}

	fileID, ok := drivelink.ExtractFileID(rawURL)
	if !ok {
		return VideoSource{}, ErrNoFileID
	}

	return VideoSource{
		RawURL:              rawURL,
		IsExternalDriveLink: true,
		FileID:              fileID,
	}, nil
}

// ResolvedEndpoint is one candidate playable URL derived from a VideoSource.
// Verified is true when a reachability probe succeeded for this endpoint.
type ResolvedEndpoint struct {
	URL      string               `json:"url"`
	Kind     drivelink.FormatKind `json:"kind"`
	Verified bool                 `json:"verified"`
}

// NewDirectEndpoint wraps a non-drive URL for playback as-is. Plain http is
// upgraded to https: production mobile builds refuse cleartext streams.
func NewDirectEndpoint(rawURL string) ResolvedEndpoint {
	if strings.HasPrefix(rawURL, "http:") {
		rawURL = "https:" + strings.TrimPrefix(rawURL, "http:")
	}

	return ResolvedEndpoint{URL: rawURL, Kind: drivelink.KindDirect}
}
