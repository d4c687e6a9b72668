package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
)

const articleHTML = `<html><head>
<title>Council Approves Transit Budget</title>
<meta name="description" content="The city council voted on Tuesday.">
<meta property="og:site_name" content="Example Times">
</head><body>
<p>By Jane Doe</p>
<p>The city council approved the transit budget on Tuesday after a long debate. According to officials, the plan funds three new bus lines.</p>
<p>"This is a good day for commuters," the mayor said. A report published by the transit authority shows ridership grew last year.</p>
<a href="https://other.example.org/report">report</a>
</body></html>`

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "trustlens-test",
		MaxBodyBytes: 1 << 20,
	}
}

func TestFetchWithRetry_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "trustlens-test" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Body != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected body: %s", result.Body)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	if _, err := fetcher.FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestFetchWithRetry_Backoff(t *testing.T) {
	var sleeps []time.Duration
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) { sleeps = append(sleeps, d) }
	defer func() { fetchSleepFunc = orig }()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Expected ErrFetchFailed, got %v", err)
	}

	want := []time.Duration{500 * time.Millisecond, time.Second}
	if len(sleeps) != len(want) {
		t.Fatalf("Expected %d sleeps, got %v", len(want), sleeps)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestFetchWithRetry_NoRetryOnClientError(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected status in error, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("Expected 1 attempt for 404, got %d", got)
	}
}

func TestFetchWithRetry_ContextCancelled(t *testing.T) {
	noSleep(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	_, err := fetcher.FetchWithRetry(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFetchWithRetry_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("a", 500))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 100
	fetcher := NewFetcher(cfg, 0, nil)
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Body) != 100 {
		t.Errorf("Expected body truncated to 100 bytes, got %d", len(result.Body))
	}
}

func TestFetchArticle_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 50, nil)
	ft, err := fetcher.FetchArticle(context.Background(), server.URL+"/news/transit")
	if err != nil {
		t.Fatalf("FetchArticle: %v", err)
	}

	if ft.Title != "Council Approves Transit Budget" {
		t.Errorf("Title = %q", ft.Title)
	}
	if ft.SiteName != "Example Times" {
		t.Errorf("SiteName = %q", ft.SiteName)
	}
	if !ft.References.Found {
		t.Error("Expected attribution phrases to be found")
	}
	if !ft.Metadata.HasAuthor {
		t.Error("Expected byline to be detected")
	}
	if ft.Metadata.ExternalLinks != 1 {
		t.Errorf("ExternalLinks = %d, want 1", ft.Metadata.ExternalLinks)
	}
	if ft.WordCount == 0 || ft.WordCount != ft.Metadata.WordCount {
		t.Errorf("WordCount = %d, metadata %d", ft.WordCount, ft.Metadata.WordCount)
	}
}

func TestFetchArticle_PlainText(t *testing.T) {
	text := strings.Repeat("Plain text article body. ", 10)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, text)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 50, nil)
	ft, err := fetcher.FetchArticle(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchArticle: %v", err)
	}
	if ft.Text != strings.TrimSpace(text) {
		t.Errorf("Text = %q", ft.Text)
	}
}

func TestFetchArticle_TooShort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body><p>Tiny.</p></body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(), 100, nil)
	_, err := fetcher.FetchArticle(context.Background(), server.URL)
	if !errors.Is(err, ErrTextTooShort) {
		t.Errorf("Expected ErrTextTooShort, got %v", err)
	}
}

func TestFetchArticle_InvalidURL(t *testing.T) {
	fetcher := NewFetcher(testHTTPConfig(), 0, nil)
	for _, raw := range []string{"", "ftp://example.com/a", "not a url", "https://"} {
		if _, err := fetcher.FetchArticle(context.Background(), raw); !errors.Is(err, ErrFetchFailed) {
			t.Errorf("FetchArticle(%q): expected ErrFetchFailed, got %v", raw, err)
		}
	}
}

func TestFetchArticle_ReaderMode(t *testing.T) {
	var requested atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested.Store(r.URL.Path)
		if got := r.Header.Get("Accept"); got != "text/plain" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = fmt.Fprint(w, "Title: Reader Headline\nURL Source: https://news.example.com/a\n\nMarkdown Content:\n"+
			strings.Repeat("Reader body sentence. ", 10))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.ReaderURL = server.URL + "/"
	fetcher := NewFetcher(cfg, 50, nil)

	ft, err := fetcher.FetchArticle(context.Background(), "https://news.example.com/a")
	if err != nil {
		t.Fatalf("FetchArticle: %v", err)
	}
	if ft.Title != "Reader Headline" {
		t.Errorf("Title = %q", ft.Title)
	}
	if !strings.HasPrefix(ft.Text, "Reader body sentence.") {
		t.Errorf("Text = %q", ft.Text)
	}
	if ft.FinalURL != "https://news.example.com/a" {
		t.Errorf("FinalURL = %q", ft.FinalURL)
	}
	if path, _ := requested.Load().(string); !strings.HasSuffix(path, "news.example.com/a") {
		t.Errorf("reader path = %q", path)
	}
}

func TestFetchArticle_RobotsDisallowed(t *testing.T) {
	var articleHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		articleHits.Add(1)
		_, _ = fmt.Fprint(w, articleHTML)
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RespectRobots = true
	fetcher := NewFetcher(cfg, 50, nil)

	_, err := fetcher.FetchArticle(context.Background(), server.URL+"/private/story")
	if !errors.Is(err, ErrRobotsDisallowed) {
		t.Errorf("Expected ErrRobotsDisallowed, got %v", err)
	}
	if articleHits.Load() != 0 {
		t.Error("Disallowed page must not be fetched")
	}

	if _, err := fetcher.FetchArticle(context.Background(), server.URL+"/public/story"); err != nil {
		t.Errorf("Allowed page: %v", err)
	}
}

func TestParseReaderText(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTitle string
		wantText  string
	}{
		{
			name:      "full headers",
			body:      "Title: Hello\nURL Source: https://x.test\nPublished Time: 2024-01-01\n\nMarkdown Content:\nBody here.",
			wantTitle: "Hello",
			wantText:  "Body here.",
		},
		{
			name:     "no headers",
			body:     "Just some text.",
			wantText: "Just some text.",
		},
		{
			name:      "headers without marker",
			body:      "Title: Hello\n\nFirst paragraph.",
			wantTitle: "Hello",
			wantText:  "First paragraph.",
		},
		{
			name:      "title only",
			body:      "Title: Lonely",
			wantTitle: "Lonely",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, text := parseReaderText(tt.body)
			if title != tt.wantTitle || text != tt.wantText {
				t.Errorf("parseReaderText() = (%q, %q), want (%q, %q)", title, text, tt.wantTitle, tt.wantText)
			}
		})
	}
}

func TestSubjectFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://example.com/news/council-approves-budget", "council approves budget"},
		{"https://example.com/2024/05/storm_hits_coast.html", "storm hits coast"},
		{"https://example.com/", "example.com"},
		{"https://example.com/a/b/", "b"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := SubjectFromURL(tt.url); got != tt.expected {
				t.Errorf("SubjectFromURL(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}
