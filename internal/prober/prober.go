package prober

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lessonplay/server/internal/domain"
	"github.com/lessonplay/server/pkg/drivelink"
)

var ErrEmptyFileID = errors.New("file id is empty")

type Config struct {
	// ProbeTimeout bounds each individual reachability probe.
	ProbeTimeout time.Duration
	// Order overrides the default template priority. The ordering is a
	// tunable, not a correctness requirement.
	Order []drivelink.FormatKind
}

type prober struct {
	httpClient   *http.Client
	probeTimeout time.Duration
	order        []drivelink.FormatKind
	logger       *slog.Logger
}

func New(transport http.RoundTripper, cfg *Config, logger *slog.Logger) *prober {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	order := cfg.Order
	if len(order) == 0 {
		order = drivelink.ProbeOrder()
	}

	return &prober{
		// redirects are not followed: a 302 already counts as reachable
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		probeTimeout: timeout,
		order:        order,
		logger:       logger,
	}
}

// FindWorkingEndpoint probes the candidate templates for fileID sequentially
// and returns the first usable endpoint. Probes run one at a time to bound
// outstanding requests and keep behavior deterministic for a given network
// condition.
//
// A failed probe against a tier-1 template still accepts the template
// speculatively: Drive is known to reject HEAD requests for URLs that stream
// fine. When every template fails verification the highest-priority template
// is returned unverified and failure surfaces at load time instead.
func (p *prober) FindWorkingEndpoint(ctx context.Context, fileID string) (domain.ResolvedEndpoint, error) {
	if fileID == "" {
		return domain.ResolvedEndpoint{}, ErrEmptyFileID
	}

	for _, kind := range p.order {
		url := drivelink.BuildURL(fileID, kind)

		ok, err := p.probe(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return domain.ResolvedEndpoint{}, fmt.Errorf("probe canceled: %w", ctx.Err())
			}

			if drivelink.Tier1(kind) {
				p.logger.DebugContext(ctx, "accepting endpoint despite failed probe", "kind", kind.String(), "error", err)
				return domain.ResolvedEndpoint{URL: url, Kind: kind, Verified: false}, nil
			}

			p.logger.DebugContext(ctx, "probe failed", "kind", kind.String(), "error", err)
			continue
		}

		if ok {
			return domain.ResolvedEndpoint{URL: url, Kind: kind, Verified: true}, nil
		}

		p.logger.DebugContext(ctx, "endpoint not reachable", "kind", kind.String())
	}

	// Playback is still attempted with the default template; a genuinely
	// broken source errors at load time.
	kind := drivelink.DefaultKind()

	return domain.ResolvedEndpoint{
		URL:      drivelink.BuildURL(fileID, kind),
		Kind:     kind,
		Verified: false,
	}, nil
}

func (p *prober) probe(ctx context.Context, url string) (bool, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to probe url: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusFound, nil
}
