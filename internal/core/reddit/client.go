// Package reddit talks to the public www.reddit.com/*.json endpoints.
// No credentials are used; the client stays under informal rate limits by
// pacing requests and backing off on explicit 429 responses.
package reddit

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "threadlens/1.0 (research bot)"
	defaultDelay     = 3 * time.Second
	defaultJitter    = 500 * time.Millisecond
	defaultTimeout   = 30 * time.Second

	// MaxPerPage is the largest page size the listing endpoints accept.
	MaxPerPage = 100
)

// transientRetries is the retry budget for 5xx responses.
const transientRetries = 5

// default429Backoff is the dedicated backoff schedule for HTTP 429.
var default429Backoff = []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}

// Config controls client behavior. The zero value gets usable defaults.
type Config struct {
	BaseURL    string
	UserAgent  string
	Delay      time.Duration // base inter-request delay
	Jitter     time.Duration // max random extra delay
	Timeout    time.Duration // per-request timeout
	HTTPClient *http.Client
	Logger     *zap.Logger

	// Backoff429 overrides the 429 backoff schedule. Tests shorten it.
	Backoff429 []time.Duration
	// RetryBase overrides the transient-retry backoff unit. Tests shorten it.
	RetryBase time.Duration
}

// Client is a paced, retrying fetcher for the public JSON endpoints. All
// failures degrade to absent results; callers never see an error from a
// fetch, only "no data".
type Client struct {
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	jitter     time.Duration
	backoff429 []time.Duration
	retryBase  time.Duration
	log        *zap.Logger
	sleep      func(context.Context, time.Duration) bool
}

// NewClient builds a client with defaults applied.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		parsed, _ = url.Parse(defaultBaseURL)
	}

	agent := strings.TrimSpace(cfg.UserAgent)
	if agent == "" {
		agent = defaultUserAgent
	}

	delay := cfg.Delay
	if delay == 0 {
		delay = defaultDelay
	}
	jitter := cfg.Jitter
	if jitter == 0 {
		jitter = defaultJitter
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	backoff := cfg.Backoff429
	if len(backoff) == 0 {
		backoff = default429Backoff
	}
	retryBase := cfg.RetryBase
	if retryBase == 0 {
		retryBase = time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    parsed,
		userAgent:  agent,
		httpClient: httpClient,
		limiter:    limiter,
		jitter:     jitter,
		backoff429: backoff,
		retryBase:  retryBase,
		log:        logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// pace blocks until the next request slot, adding a small random jitter so
// requests do not land on an exact cadence.
func (c *Client) pace(ctx context.Context) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	if c.jitter > 0 {
		return c.sleep(ctx, time.Duration(rand.Int63n(int64(c.jitter))))
	}
	return true
}

// getJSON fetches a JSON endpoint. It returns the raw body and true on
// success, or nil and false on any failure. Three policies compose in fixed
// order: transient 5xx retry with multiplicative backoff, a dedicated 429
// schedule, and the inter-request pacing applied before every attempt.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, bool) {
	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}
	urlStr := target.String()

	attempt429 := 0
	transient := 0

	for {
		if !c.pace(ctx) {
			return nil, false
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			c.log.Warn("build request failed", zap.String("url", urlStr), zap.Error(err))
			return nil, false
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warn("request failed", zap.String("url", urlStr), zap.Error(err))
			return nil, false
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			if attempt429 >= len(c.backoff429) {
				c.log.Warn("rate limited, giving up",
					zap.String("url", urlStr),
					zap.Int("retries", attempt429))
				return nil, false
			}
			delay := c.backoff429[attempt429]
			attempt429++
			c.log.Warn("rate limited, backing off",
				zap.String("url", urlStr),
				zap.Int("attempt", attempt429),
				zap.Duration("backoff", delay))
			if !c.sleep(ctx, delay) {
				return nil, false
			}
			continue

		case isTransient(resp.StatusCode):
			_ = resp.Body.Close()
			if transient >= transientRetries {
				c.log.Warn("server error, giving up",
					zap.String("url", urlStr),
					zap.Int("status", resp.StatusCode))
				return nil, false
			}
			delay := c.retryBase << transient
			transient++
			if !c.sleep(ctx, delay) {
				return nil, false
			}
			continue
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(contentType, "json") && !strings.Contains(contentType, "javascript") {
			_ = resp.Body.Close()
			c.log.Warn("non-JSON response",
				zap.String("url", urlStr),
				zap.String("content_type", contentType))
			return nil, false
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			_ = resp.Body.Close()
			c.log.Warn("unexpected status", zap.String("url", urlStr), zap.Int("status", resp.StatusCode))
			return nil, false
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			c.log.Warn("read body failed", zap.String("url", urlStr), zap.Error(err))
			return nil, false
		}
		if !json.Valid(body) {
			c.log.Warn("JSON decode failed", zap.String("url", urlStr))
			return nil, false
		}
		return body, true
	}
}

func isTransient(status int) bool {
	switch status {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
