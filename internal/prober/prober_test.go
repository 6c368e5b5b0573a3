package prober

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonplay/server/pkg/drivelink"
)

// fakeTransport answers probes by URL substring match.
type fakeTransport struct {
	statuses map[string]int
	errs     map[string]error
	requests []string
}

func (t *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	t.requests = append(t.requests, url)

	for substr, err := range t.errs {
		if strings.Contains(url, substr) {
			return nil, err
		}
	}
	for substr, status := range t.statuses {
		if strings.Contains(url, substr) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     make(http.Header),
			}, nil
		}
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
	}, nil
}

func newTestProber(transport http.RoundTripper) *prober {
	return New(transport, &Config{ProbeTimeout: time.Second}, slog.Default())
}

func TestFindWorkingEndpointFirstCandidateOK(t *testing.T) {
	transport := &fakeTransport{statuses: map[string]int{"download=1": http.StatusOK}}
	p := newTestProber(transport)

	endpoint, err := p.FindWorkingEndpoint(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, drivelink.KindExportViewDownload, endpoint.Kind)
	assert.True(t, endpoint.Verified)
	assert.Len(t, transport.requests, 1, "must stop at the first verified endpoint")
}

func TestFindWorkingEndpointRedirectCountsAsReachable(t *testing.T) {
	transport := &fakeTransport{statuses: map[string]int{"download=1": http.StatusFound}}
	p := newTestProber(transport)

	endpoint, err := p.FindWorkingEndpoint(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.True(t, endpoint.Verified)
	assert.Equal(t, drivelink.KindExportViewDownload, endpoint.Kind)
}

func TestFindWorkingEndpointTier1SpeculativeAccept(t *testing.T) {
	// the first template errors at transport level: tier-1, so it is kept
	transport := &fakeTransport{errs: map[string]error{"download=1": errors.New("head not allowed")}}
	p := newTestProber(transport)

	endpoint, err := p.FindWorkingEndpoint(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, drivelink.KindExportViewDownload, endpoint.Kind)
	assert.False(t, endpoint.Verified)
	assert.Len(t, transport.requests, 1)
}

func TestFindWorkingEndpointSkipsToNextCandidate(t *testing.T) {
	transport := &fakeTransport{statuses: map[string]int{
		"download=1": http.StatusForbidden,
		"view&id=":   http.StatusOK,
	}}
	p := newTestProber(transport)

	endpoint, err := p.FindWorkingEndpoint(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, drivelink.KindExportView, endpoint.Kind)
	assert.True(t, endpoint.Verified)
	assert.Len(t, transport.requests, 2)
}

func TestFindWorkingEndpointAllUnreachableFallsBackToDefault(t *testing.T) {
	// every probe answers 404: no verification, no transport errors
	transport := &fakeTransport{}
	p := newTestProber(transport)

	endpoint, err := p.FindWorkingEndpoint(context.Background(), "ABC123")
	require.NoError(t, err, "probe exhaustion is not a failure")
	assert.Equal(t, drivelink.DefaultKind(), endpoint.Kind)
	assert.False(t, endpoint.Verified)
	assert.Len(t, transport.requests, len(drivelink.ProbeOrder()))
}

func TestFindWorkingEndpointEmptyFileID(t *testing.T) {
	p := newTestProber(&fakeTransport{})

	_, err := p.FindWorkingEndpoint(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyFileID)
}

func TestFindWorkingEndpointCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProber(&fakeTransport{errs: map[string]error{"drive": context.Canceled}})

	_, err := p.FindWorkingEndpoint(ctx, "ABC123")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
