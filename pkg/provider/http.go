package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/httputil"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// HTTPConfig holds settings for the HTTP snapshot provider.
type HTTPConfig struct {
	// BaseURL is the snapshot endpoint, e.g. "https://osm.example.com/snapshot".
	BaseURL string

	// Timeout bounds a single request. Defaults to 60s; snapshot
	// queries over large extents are slow on the upstream side.
	Timeout time.Duration

	// Client overrides the HTTP client (tests). Timeout is ignored
	// when Client is set.
	Client *http.Client
}

// HTTP fetches road network snapshots from a remote JSON endpoint.
// Transient failures (timeouts, 429, 5xx) are retried with backoff.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP snapshot provider.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "snapshot base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid snapshot base URL")
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{baseURL: cfg.BaseURL, client: client}, nil
}

// Snapshot implements Provider.
func (p *HTTP) Snapshot(ctx context.Context, extent Extent) (*roadnet.Graph, error) {
	if err := extent.Validate(); err != nil {
		return nil, err
	}

	reqURL := p.requestURL(extent)

	var g *roadnet.Graph
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, err, "failed to build snapshot request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeNetwork, err, "snapshot request failed"))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Drain so the connection can be reused across retries.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			err := statusError(resp.StatusCode)
			if httputil.RetryableStatus(resp.StatusCode) {
				return httputil.Retryable(err)
			}
			return err
		}

		g, err = roadnet.ReadSnapshot(resp.Body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "failed to parse snapshot")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// requestURL encodes the extent as query parameters on the base URL.
func (p *HTTP) requestURL(extent Extent) string {
	q := url.Values{}
	switch extent.Kind {
	case ExtentBBox:
		q.Set("bbox", fmt.Sprintf("%s,%s,%s,%s",
			formatCoord(extent.West), formatCoord(extent.South),
			formatCoord(extent.East), formatCoord(extent.North)))
	case ExtentPoint:
		q.Set("lon", formatCoord(extent.Lon))
		q.Set("lat", formatCoord(extent.Lat))
		q.Set("dist", strconv.FormatFloat(extent.Distance, 'f', -1, 64))
	}
	return p.baseURL + "?" + q.Encode()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.ErrCodeRateLimited, "snapshot endpoint rate limited")
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "snapshot endpoint returned 404")
	case code >= 500:
		return apperrors.New(apperrors.ErrCodeNetwork, "snapshot endpoint returned %d", code)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "snapshot endpoint rejected request with %d", code)
	}
}

// Ensure HTTP implements Provider.
var _ Provider = (*HTTP)(nil)
