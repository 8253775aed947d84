package healthsdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imroc/req/v3"
)

const (
	v1Health = "/api/health"
)

// Client performs the health request against a single base address.
type Client struct {
	client  *req.Client
	baseURL string
	// urlErr is reported by every request instead of sending one.
	urlErr error
}

type Option func(*req.Client)

// WithTimeout bounds each request. Without it the transport defaults apply.
func WithTimeout(d time.Duration) Option {
	return func(c *req.Client) {
		c.SetTimeout(d)
	}
}

// New creates a client for baseURL. No retries are configured.
// A base address that is not an absolute http(s) URL does not fail here; the
// request fails instead, the same way an unreachable host would.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	client := req.C().
		SetTimeout(0).
		SetCommonRetryCount(0).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	for _, opt := range opts {
		opt(client)
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
		urlErr:  checkURL(baseURL + v1Health),
	}, nil
}

func checkURL(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidURL, target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q: unsupported scheme %q", ErrInvalidURL, target, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q: missing host", ErrInvalidURL, target)
	}
	return nil
}

// HealthURL is the full request target.
func (c *Client) HealthURL() string {
	return c.baseURL + v1Health
}

// FetchHealth issues GET /api/health and returns the parsed body.
// The status code is not inspected; any body that parses as JSON is a payload.
func (c *Client) FetchHealth(ctx context.Context) (Status, error) {
	if c.urlErr != nil {
		return Status{}, fmt.Errorf("http request error: health %w", c.urlErr)
	}

	start := time.Now()

	res, err := c.client.R().
		SetContext(ctx).
		Get(c.HealthURL())
	if err != nil {
		return Status{}, fmt.Errorf("http request error: health %w", err)
	}

	body, err := res.ToBytes()
	if err != nil {
		return Status{}, fmt.Errorf("read body: health %w", err)
	}

	status, err := ParseStatus(body)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	slog.Debug("health fetched",
		"url", c.HealthURL(),
		"code", res.StatusCode,
		"size", humanize.Bytes(uint64(len(body))),
		"took", time.Since(start),
	)

	return status, nil
}

// Fetch is FetchHealth folded into a Result.
func (c *Client) Fetch(ctx context.Context) Result {
	status, err := c.FetchHealth(ctx)
	return Result{Status: status, Err: err}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}
