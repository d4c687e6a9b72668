package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/trustlens/internal/extract"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/util"
	"github.com/ppiankov/trustlens/internal/worker"
)

var (
	// ErrFetchFailed wraps every full-text retrieval failure
	ErrFetchFailed = errors.New("full-text fetch failed")

	// ErrTextTooShort is returned when the page yields too little text to analyze
	ErrTextTooShort = errors.New("article text too short")

	// ErrRobotsDisallowed is returned when robots.txt forbids the fetch
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
)

const (
	maxFetchAttempts = 3
	baseBackoff      = 500 * time.Millisecond
	maxRedirects     = 5
)

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// Fetcher retrieves readable article text, directly or through a reader proxy
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	readerURL  string
	minChars   int
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
}

// NewFetcher creates a Fetcher from the HTTP configuration. limiter may be nil.
func NewFetcher(cfg model.HTTPConfig, minChars int, limiter *worker.Limiter) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	client := util.NewHTTPClient(timeout, util.ProxySettings{
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		NoProxy:    cfg.NoProxy,
	})
	if cfg.InsecureTLS {
		client.Transport.(*http.Transport).TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	if minChars <= 0 {
		minChars = 100
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		readerURL:  strings.TrimSpace(cfg.ReaderURL),
		minChars:   minChars,
		limiter:    limiter,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client)
	}
	return f
}

// fetchResult is one successful HTTP exchange
type fetchResult struct {
	Body        string
	ContentType string
	FinalURL    string
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %s", e.status)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// FetchArticle returns the readable text of an article and its metadata
func (f *Fetcher) FetchArticle(ctx context.Context, rawURL string) (*model.FullText, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid article URL %q", ErrFetchFailed, rawURL)
	}

	if f.robots != nil {
		allowed, delay, _ := f.robots.CanFetch(ctx, rawURL)
		if !allowed {
			return nil, fmt.Errorf("%w: %w: %s", ErrFetchFailed, ErrRobotsDisallowed, rawURL)
		}
		if delay > 0 && f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
			}
		}
	}

	target := rawURL
	if f.readerURL != "" {
		target = strings.TrimSuffix(f.readerURL, "/") + "/" + rawURL
	}

	res, err := f.FetchWithRetry(ctx, target)
	if err != nil {
		return nil, err
	}

	ft := &model.FullText{URL: rawURL, FinalURL: res.FinalURL}
	if f.readerURL != "" {
		ft.FinalURL = rawURL
		ft.Title, ft.Text = parseReaderText(res.Body)
	} else if isPlainText(res.ContentType) {
		ft.Text = strings.TrimSpace(res.Body)
	} else {
		page, err := extract.ParsePage(res.Body, res.FinalURL)
		if err != nil {
			return nil, fmt.Errorf("%w: parse html: %w", ErrFetchFailed, err)
		}
		ft.Title = page.Title
		ft.Description = page.Description
		ft.SiteName = page.SiteName
		ft.Text = page.Text
		ft.Metadata.ExternalLinks = page.ExternalLinks
	}

	if n := len([]rune(ft.Text)); n < f.minChars {
		return nil, fmt.Errorf("%w: %d chars from %s", ErrTextTooShort, n, rawURL)
	}

	links := ft.Metadata.ExternalLinks
	ft.Metadata = extract.Metadata(ft.Text)
	ft.Metadata.ExternalLinks = links
	ft.References = extract.References(ft.Text)
	ft.WordCount = ft.Metadata.WordCount

	return ft, nil
}

// FetchWithRetry retries transient failures (network, 5xx, 429) with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*fetchResult, error) {
	var lastErr error
	for attempt := range maxFetchAttempts {
		if attempt > 0 {
			fetchSleepFunc(baseBackoff << (attempt - 1))
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}

		res, err := f.fetch(ctx, rawURL)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !isRetryable(ctx, err) {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrFetchFailed, lastErr)
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*fetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.readerURL != "" {
		req.Header.Set("Accept", "text/plain")
	} else {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &fetchResult{
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}

func isPlainText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/plain" || mediaType == "text/markdown"
}

// parseReaderText splits a reader-proxy response into title and body.
// The proxy prefixes "Title:", "URL Source:" and "Markdown Content:" lines.
func parseReaderText(body string) (title, text string) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "Title:") {
		return "", body
	}

	rest := body
	for {
		line, tail, found := strings.Cut(rest, "\n")
		key, value, isHeader := strings.Cut(line, ":")
		switch {
		case isHeader && key == "Title":
			title = strings.TrimSpace(value)
		case isHeader && (key == "URL Source" || key == "Published Time"):
		case isHeader && key == "Markdown Content":
			return title, strings.TrimSpace(tail)
		case strings.TrimSpace(line) == "":
		default:
			return title, strings.TrimSpace(rest)
		}
		if !found {
			return title, ""
		}
		rest = tail
	}
}

// SubjectFromURL derives a readable headline from the last URL path segment
func SubjectFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	// Remove file extensions
	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	// De-slugify
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")

	return strings.TrimSpace(last)
}
