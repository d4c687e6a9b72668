package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("User-agent: trustlens\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker("trustlens/0.1 (+https://example.com)", server.Client())
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/news/story")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /news/story to be allowed for trustlens")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}

	if checker.IsAllowed(ctx, server.URL+"/private/file") {
		t.Error("expected /private to be disallowed")
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", n)
	}

	checker.Clear()
	checker.IsAllowed(ctx, server.URL+"/news")
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("expected refetch after Clear, got %d fetches", n)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := NewRobotsChecker("trustlens", server.Client())
	if !checker.IsAllowed(context.Background(), server.URL+"/anything") {
		t.Error("expected missing robots.txt to allow everything")
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker("trustlens", &http.Client{Timeout: 100 * time.Millisecond})
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/story")
	if err != nil || !allowed {
		t.Errorf("expected unreachable robots.txt to allow, got %v, %v", allowed, err)
	}
}

func TestRobotsChecker_BadURL(t *testing.T) {
	checker := NewRobotsChecker("trustlens", nil)
	if _, _, err := checker.CanFetch(context.Background(), "not a url"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"trustlens/0.1 (+https://github.com/ppiankov/trustlens)": "trustlens",
		"Mozilla/5.0 (X11)": "Mozilla",
		"":                  "",
	}
	for in, expected := range tests {
		if got := NormalizeUserAgent(in); got != expected {
			t.Errorf("NormalizeUserAgent(%q) = %q, expected %q", in, got, expected)
		}
	}
}
