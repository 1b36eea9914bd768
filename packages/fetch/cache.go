package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

const cachePrefix = "scraper:body:"

func cacheKey(t Target) string {
	if len(t.Query) == 0 {
		return cachePrefix + t.URL
	}
	values := url.Values{}
	for k, v := range t.Query {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(t.URL, "?") {
		sep = "&"
	}
	// url.Values.Encode sorts keys, so the key is stable across runs.
	return cachePrefix + t.URL + sep + values.Encode()
}

func (c *Client) cacheGet(ctx context.Context, t Target) ([]byte, bool) {
	if c.cache == nil || !t.Cacheable {
		return nil, false
	}
	body, err := c.cache.Get(ctx, cacheKey(t)).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *Client) cacheSet(ctx context.Context, t Target, body []byte) {
	if c.cache == nil || !t.Cacheable {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(t), body, c.cacheTTL).Err(); err != nil {
		slog.Warn("Failed to cache response body", "url", t.URL, "error", err)
	}
}
