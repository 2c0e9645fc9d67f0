package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a status page we read. Status pages and
// APIs are small; anything larger is noise.
const maxResponseBytes = 2 << 20

// ClientConfig holds settings for the shared probe HTTP client.
type ClientConfig struct {
	// UserAgent is sent on every request. Several status pages return
	// 403 to clients without a browser-like agent.
	UserAgent string
	// RequestsPerSecond caps the request rate per provider host.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client fetches provider status pages with a fixed User-Agent. One Client
// is shared by all probes; requests are throttled per provider host, so a
// slow or chatty provider never queues the other probes of a fan-out
// behind its limiter.
type Client struct {
	http      *http.Client
	userAgent string
	rps       rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a probe HTTP client.
func NewClient(cfg ClientConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		rps:       rate.Limit(rps),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the rate limiter for one provider host, creating it on
// first use. Burst 2 covers the status-plus-components request pair a
// StatusPage poll issues back to back.
func (c *Client) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.rps, 2)
		c.limiters[host] = l
	}
	return l
}

// Get fetches rawURL and returns the response body.
// Non-2xx responses are returned as errors.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	if err := c.limiterFor(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	return body, nil
}
