// Package dvach implements the thread fetcher over a 2ch-style JSON API.
package dvach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrBodyTooLarge is returned by GetLimited when a body exceeds its limit.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Retryable reports whether repeating the request may help. Client errors will
// not go away on their own; server errors might.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// Options configures a Client.
type Options struct {
	UserAgent       string
	RequestInterval time.Duration // Minimum spacing between requests to one host; 0 disables
	Timeout         time.Duration
	HTTPClient      *http.Client // Overrides Timeout when set
	Logger          zerolog.Logger
}

// Client is a thin HTTP wrapper that paces requests per host.
type Client struct {
	http      *http.Client
	userAgent string
	interval  time.Duration
	log       zerolog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:      hc,
		userAgent: opts.UserAgent,
		interval:  opts.RequestInterval,
		log:       opts.Logger.With().Str("component", "dvach").Logger(),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Get fetches rawURL and returns the body. Waits for the host's rate limiter first.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.GetLimited(ctx, rawURL, 0)
}

// GetLimited is Get that reads at most limit bytes of the body and fails with
// ErrBodyTooLarge past that. limit <= 0 reads everything.
func (c *Client) GetLimited(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %s: %w", rawURL, err)
	}
	if limiter := c.limiterFor(parsed.Host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("url", rawURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	var body io.Reader = resp.Body
	if limit > 0 {
		if resp.ContentLength > limit {
			return nil, fmt.Errorf("%s is %d bytes, limit %d: %w", rawURL, resp.ContentLength, limit, ErrBodyTooLarge)
		}
		body = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", rawURL, limit, ErrBodyTooLarge)
	}
	return data, nil
}

// limiterFor returns the host's limiter, creating it on first use.
func (c *Client) limiterFor(host string) *rate.Limiter {
	if c.interval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(c.interval), 1)
	c.limiters[host] = l
	return l
}
