package gutenberg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	baseURL   = "https://www.gutenberg.org"
	userAgent = "Gutenberg-Reader/0.1 (https://github.com/Another0Noob/gutenberg-reader)"
)

const (
	rateLimitRequests = 2
	rateLimitDuration = time.Second
	defaultWorkers    = 4
	defaultLanguage   = "English"
	maxPageSize       = 32 << 20
)

// ErrNotFound is returned when a page or a downloadable file does not exist.
var ErrNotFound = errors.New("not found")

// Client scrapes the Project Gutenberg website.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	language    string
	workers     int
	progress    func(done, total int)
}

type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a mirror or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit allows perSecond requests per second. perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := max(int(perSecond), 1)
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLanguage keeps only books whose listing is marked with this language.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

// WithWorkers sets how many index pages are fetched at once.
func WithWorkers(n int) Option {
	return func(c *Client) { c.workers = max(n, 1) }
}

// WithProgress registers a callback invoked after each index page.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Client) { c.progress = fn }
}

// NewClient creates a new Project Gutenberg client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDuration/time.Duration(rateLimitRequests)), rateLimitRequests),
		language:    defaultLanguage,
		workers:     defaultWorkers,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the site root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// getPage fetches an HTML page. A 404 wraps ErrNotFound; other non-2xx
// statuses are returned as *StatusError.
func (c *Client) getPage(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	fullURL := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", fullURL, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: fullURL, Code: resp.StatusCode}
	}
	return b, nil
}

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
