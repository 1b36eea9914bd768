package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/limiter"
	"github.com/stretchr/testify/require"
)

func parseString(body []byte) (string, error) {
	return string(body), nil
}

func newTestClient(policy Policy) *Client {
	return NewClient(Options{Limiter: limiter.New(2), Policy: policy})
}

func TestGetRetriesUntilSuccess(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(Policy{})
	var retries []int
	c.OnRetry = func(url string, attempt int, err error) {
		retries = append(retries, attempt)
	}

	got, err := Get(context.Background(), c, Target{URL: srv.URL}, parseString)
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, []int{1, 2}, retries)
	require.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestGetRetriesOnParseFailure(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte("garbage"))
	}))
	defer srv.Close()

	c := newTestClient(Policy{})
	parse := func(body []byte) (string, error) {
		if atomic.LoadInt64(&calls) < 3 {
			return "", context.DeadlineExceeded
		}
		return string(body), nil
	}

	got, err := Get(context.Background(), c, Target{URL: srv.URL}, parse)
	require.NoError(t, err)
	require.Equal(t, "garbage", got)
	require.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestGetPermitsRestoredAfterFailedAttempts(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) <= 5 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	lim := limiter.New(1)
	c := NewClient(Options{Limiter: lim, Policy: Policy{}})

	_, err := Get(context.Background(), c, Target{URL: srv.URL}, parseString)
	require.NoError(t, err)

	// With capacity 1, every failed attempt must have given its permit
	// back or this acquire would hang.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, lim.Acquire(ctx))
	lim.Release()
}

func TestGetGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(Policy{MaxAttempts: 3})
	_, err := Get(context.Background(), c, Target{URL: srv.URL}, parseString)
	require.Error(t, err)
	require.Contains(t, err.Error(), "after 3 attempts")
	require.EqualValues(t, 3, atomic.LoadInt64(&calls))
}

func TestGetHonorsRetryAfterWithoutConsumingAttempts(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// MaxAttempts 1 proves the 429 wait did not count as a failure.
	c := newTestClient(Policy{MaxAttempts: 1, RetryAfterFallback: 10 * time.Millisecond})

	got, err := Get(context.Background(), c, Target{URL: srv.URL}, parseString)
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestGetStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := newTestClient(Policy{})
	_, err := Get(ctx, c, Target{URL: srv.URL}, parseString)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetSendsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "items", r.URL.Query().Get("one"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(Policy{})
	target := Target{URL: srv.URL, Query: map[string]string{"page": "2", "one": "items"}}
	_, err := Get(context.Background(), c, target, parseString)
	require.NoError(t, err)
}
