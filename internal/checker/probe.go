// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/linkaudit/internal/httputil"
	"github.com/pdiddy/linkaudit/pkg/types"
)

// Response is what a single probe observed.
type Response struct {
	Status   int
	Location string
}

// Prober issues one lightweight request without following redirects.
type Prober interface {
	Probe(ctx context.Context, url string) (Response, error)
}

// HTTPProber probes with HEAD requests.
type HTTPProber struct {
	client    *http.Client
	userAgent string
}

// NewHTTPProber returns a prober whose client never follows redirects and
// bounds each request by cfg.Timeout.
func NewHTTPProber(cfg types.HTTPConfig) *HTTPProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = types.DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = types.DefaultUserAgent
	}
	return &HTTPProber{
		client:    httputil.NewNoRedirectClient(cfg.Timeout),
		userAgent: cfg.UserAgent,
	}
}

// Probe sends a HEAD request to url and reports the status and Location.
func (p *HTTPProber) Probe(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return Response{Status: resp.StatusCode, Location: resp.Header.Get("Location")}, nil
}
