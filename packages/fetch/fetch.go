// Package fetch
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/limiter"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Policy controls what happens when a fetch attempt fails. The zero value
// reproduces the historical scraper: unlimited attempts with no delay in
// between. A permanently dead endpoint will therefore retry forever;
// bound MaxAttempts to trade completeness for liveness.
type Policy struct {
	// MaxAttempts caps the number of acquire-through-parse cycles per
	// fetch. 0 means unlimited.
	MaxAttempts int
	// Delay is slept between attempts.
	Delay time.Duration
	// RetryAfterFallback is slept on HTTP 429 responses that carry no
	// usable Retry-After header. 429 waits never consume an attempt.
	RetryAfterFallback time.Duration
}

// Target is one URL to fetch, with optional query parameters. Cacheable
// targets may be served from and stored into the response cache.
type Target struct {
	URL       string
	Query     map[string]string
	Cacheable bool
}

type Options struct {
	Limiter *limiter.Limiter
	Policy  Policy
	// Timeout applies per HTTP request. 0 disables it, matching the
	// historical behavior.
	Timeout time.Duration
	// Cache, when non-nil, holds raw response bodies for Cacheable
	// targets across runs.
	Cache    *redis.Client
	CacheTTL time.Duration
}

// Client issues GET requests through a shared limiter and retries failed
// attempts according to its Policy. Failures are swallowed on retry by
// design; OnRetry is the only way to observe them.
type Client struct {
	http     *resty.Client
	lim      *limiter.Limiter
	policy   Policy
	cache    *redis.Client
	cacheTTL time.Duration

	// OnRetry, when set, observes every failed attempt before it is
	// retried. The default fetch path stays silent.
	OnRetry func(url string, attempt int, err error)
}

func NewClient(opts Options) *Client {
	httpc := resty.New()
	httpc.SetHeader("User-Agent", userAgent)
	if opts.Timeout > 0 {
		httpc.SetTimeout(opts.Timeout)
	}
	policy := opts.Policy
	if policy.RetryAfterFallback <= 0 {
		policy.RetryAfterFallback = 5 * time.Second
	}
	return &Client{
		http:     httpc,
		lim:      opts.Limiter,
		policy:   policy,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
	}
}

// rateLimitedError signals an HTTP 429; the fetch loop waits out the
// server-requested delay instead of counting the attempt as a failure.
type rateLimitedError struct {
	delay time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.delay)
}

// Get fetches the target and parses its body, holding one limiter permit
// from just before the request until the parse finishes. On any error in
// between, the permit is released and the whole attempt is redone per the
// client's Policy.
func Get[T any](ctx context.Context, c *Client, t Target, parse func([]byte) (T, error)) (T, error) {
	var zero T

	if body, ok := c.cacheGet(ctx, t); ok {
		v, err := parse(body)
		if err == nil {
			metrics.CacheHitsTotal.Inc()
			return v, nil
		}
		// Stale or corrupt entry; fall through to the network.
	}

	attempt := 0
	for {
		var value T
		err := c.lim.Do(ctx, func() error {
			body, err := c.fetch(ctx, t)
			if err != nil {
				return err
			}
			value, err = parse(body)
			if err != nil {
				return err
			}
			c.cacheSet(ctx, t, body)
			return nil
		})
		if err == nil {
			return value, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		var limited *rateLimitedError
		if errors.As(err, &limited) {
			if !sleep(ctx, limited.delay) {
				return zero, ctx.Err()
			}
			continue
		}

		attempt++
		metrics.RetriesTotal.Inc()
		if c.OnRetry != nil {
			c.OnRetry(t.URL, attempt, err)
		}
		if c.policy.MaxAttempts > 0 && attempt >= c.policy.MaxAttempts {
			return zero, fmt.Errorf("giving up on %s after %d attempts: %w", t.URL, attempt, err)
		}
		if c.policy.Delay > 0 && !sleep(ctx, c.policy.Delay) {
			return zero, ctx.Err()
		}
	}
}

func (c *Client) fetch(ctx context.Context, t Target) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(t.Query) > 0 {
		req.SetQueryParams(t.Query)
	}
	res, err := req.Get(t.URL)
	if err != nil {
		return nil, err
	}
	metrics.RequestsTotal.WithLabelValues(strconv.Itoa(res.StatusCode())).Inc()

	if res.StatusCode() == http.StatusTooManyRequests {
		return nil, &rateLimitedError{delay: c.retryAfter(res)}
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", res.Status(), t.URL)
	}
	return res.Body(), nil
}

func (c *Client) retryAfter(res *resty.Response) time.Duration {
	if secs, err := strconv.Atoi(res.Header().Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return c.policy.RetryAfterFallback
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
