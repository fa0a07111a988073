package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/orgscout/orgscout/internal/cache"
)

func testClient(t *testing.T, c *cache.Store) *Client {
	t.Helper()
	return NewClient(Config{
		Cache:     c,
		Delay:     time.Millisecond,
		RetryBase: time.Millisecond,
		RetryMax:  5 * time.Millisecond,
	})
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" || r.Header.Get("Accept") == "" {
			t.Error("expected browser-like headers on request")
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := testClient(t, nil)
	body, fromCache, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fromCache {
		t.Error("first fetch should not come from cache")
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchUsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("body"))
	}))
	defer srv.Close()

	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()

	c := testClient(t, store)
	ctx := context.Background()

	if _, fromCache, err := c.Fetch(ctx, srv.URL); err != nil || fromCache {
		t.Fatalf("first fetch: fromCache=%v err=%v", fromCache, err)
	}
	body, fromCache, err := c.Fetch(ctx, srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if !fromCache {
		t.Error("second fetch should come from cache")
	}
	if body != "body" {
		t.Errorf("body = %q", body)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestFetchTerminalErrorNotRetried(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var attempts []int
	c := NewClient(Config{
		Delay:     time.Millisecond,
		RetryBase: time.Millisecond,
		OnRetry:   func(attempt int, err error) { attempts = append(attempts, attempt) },
	})

	_, _, err := c.Fetch(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Fetch error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if httpErr.Retriable() {
		t.Error("404 should not be retriable")
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (no retry)", hits)
	}
	if len(attempts) != 1 {
		t.Errorf("observer called %d times, want 1", len(attempts))
	}
}

func TestFetchRetriesRateLimited(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	var attempts []int
	c := NewClient(Config{
		Delay:     time.Millisecond,
		RetryBase: time.Millisecond,
		RetryMax:  5 * time.Millisecond,
		OnRetry:   func(attempt int, err error) { attempts = append(attempts, attempt) },
	})

	body, _, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if body != "recovered" {
		t.Errorf("body = %q", body)
	}
	if hits != 3 {
		t.Errorf("server hits = %d, want 3", hits)
	}
	if len(attempts) != 2 {
		t.Errorf("observer called %d times, want 2", len(attempts))
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{
		Delay:       time.Millisecond,
		MaxAttempts: 3,
		RetryBase:   time.Millisecond,
		RetryMax:    2 * time.Millisecond,
	})

	_, _, err := c.Fetch(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Fetch error = %v, want *HTTPError", err)
	}
	if !httpErr.Retriable() {
		t.Error("503 should be retriable")
	}
	if hits != 3 {
		t.Errorf("server hits = %d, want 3 (attempt ceiling)", hits)
	}
}
