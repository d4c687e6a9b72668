package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/worker"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// GoogleNews searches the Google News RSS feed. It has no API key and no
// concept index, so concept queries fall back to a plain text search.
type GoogleNews struct {
	feedURL   string
	language  string
	userAgent string
	client    *http.Client
	limiter   *worker.Limiter
}

// NewGoogleNews creates a Google News RSS provider. limiter may be nil.
func NewGoogleNews(feedURL, language, userAgent string, timeout time.Duration, limiter *worker.Limiter) *GoogleNews {
	if feedURL == "" {
		feedURL = DefaultGoogleNewsURL
	}
	if language == "" {
		language = "en"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GoogleNews{
		feedURL:   feedURL,
		language:  language,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   limiter,
	}
}

// Name returns the provider name
func (g *GoogleNews) Name() string {
	return "googlenews"
}

// Search fetches the RSS search feed and maps its items to articles
func (g *GoogleNews) Search(ctx context.Context, q Query) ([]model.Article, error) {
	terms := q.Terms()
	if terms == "" {
		return nil, nil
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx, g.feedURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.searchURL(terms), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: google news rss http %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse google news feed: %w", err)
	}

	items := feed.Items
	if q.Sort == SortDate {
		sortItemsByDate(items)
	}

	limit := q.Limit
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	articles := make([]model.Article, 0, limit)
	for _, it := range items[:limit] {
		title, source := splitPublisher(strings.TrimSpace(it.Title))
		link := strings.TrimSpace(it.Link)
		if source == "" {
			source = hostOf(link)
		}

		var published time.Time
		if it.PublishedParsed != nil {
			published = it.PublishedParsed.UTC()
		} else if it.UpdatedParsed != nil {
			published = it.UpdatedParsed.UTC()
		}

		articles = append(articles, model.Article{
			URI:         it.GUID,
			Title:       title,
			SourceName:  source,
			URL:         link,
			PublishedAt: published,
		})
	}

	return articles, nil
}

func (g *GoogleNews) searchURL(terms string) string {
	region := "US"
	params := url.Values{}
	params.Set("q", terms)
	params.Set("hl", g.language+"-"+region)
	params.Set("gl", region)
	params.Set("ceid", region+":"+g.language)
	return g.feedURL + "?" + params.Encode()
}

// splitPublisher separates the " - Publisher" suffix Google appends to titles
func splitPublisher(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// sortItemsByDate orders items newest first, undated items last
func sortItemsByDate(items []*gofeed.Item) {
	date := func(it *gofeed.Item) time.Time {
		if it.PublishedParsed != nil {
			return *it.PublishedParsed
		}
		if it.UpdatedParsed != nil {
			return *it.UpdatedParsed
		}
		return time.Time{}
	}
	slices.SortStableFunc(items, func(a, b *gofeed.Item) int {
		return date(b).Compare(date(a))
	})
}
