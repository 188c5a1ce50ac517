package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ClientConfig tunes the download client. Zero values get defaults:
// Timeout 5m (archives run to hundreds of megabytes), MaxRetries 3,
// InitialBackoff 500ms, MaxBackoff 10s.
type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Transport is an optional custom RoundTripper, used by tests.
	Transport http.RoundTripper
}

// Client is an HTTP GET client with exponential backoff on transient
// failures (network errors, 5xx, 429).
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// sleep is injectable to make tests fast and deterministic.
	sleep func(time.Duration)
}

// NewClient constructs a Client, applying defaults for zero config values.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		sleep:          time.Sleep,
	}
}

// Get fetches url, retrying transient failures. A response is returned only
// for 200 OK; the caller must close its body. 404 is terminal, not retried:
// the bucket simply has gaps (JC before 2015, months not yet published).
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case !retryableStatus(resp.StatusCode):
			resp.Body.Close()
			return nil, fmt.Errorf("fetch: %s: status %d", url, resp.StatusCode)
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch: %s: retryable status %d", url, resp.StatusCode)
		}

		if attempt+1 >= attempts {
			break
		}
		if err := c.wait(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	done := make(chan struct{})
	go func() {
		c.sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}
