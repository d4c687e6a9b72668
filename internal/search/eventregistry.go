package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/worker"
)

const (
	// DefaultEventRegistryURL is the public EventRegistry API host
	DefaultEventRegistryURL = "https://eventregistry.org"

	articlesPath      = "/api/v1/article/getArticles"
	conceptURIPrefix  = "http://en.wikipedia.org/wiki/"
	maxErrorBodyBytes = 4096
)

// EventRegistry queries the EventRegistry article search API
type EventRegistry struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
	limiter   *worker.Limiter
}

// NewEventRegistry creates an EventRegistry provider. limiter may be nil.
func NewEventRegistry(baseURL, apiKey, userAgent string, timeout time.Duration, limiter *worker.Limiter) *EventRegistry {
	if baseURL == "" {
		baseURL = DefaultEventRegistryURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &EventRegistry{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   limiter,
	}
}

// Name returns the provider name
func (e *EventRegistry) Name() string {
	return "eventregistry"
}

type erResponse struct {
	Articles struct {
		Results []erArticle `json:"results"`
	} `json:"articles"`
	Error string `json:"error,omitempty"`
}

type erArticle struct {
	URI      string `json:"uri"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	DateTime string `json:"dateTime"`
	Source   struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"source"`
}

// Search runs a keyword or concept search
func (e *EventRegistry) Search(ctx context.Context, q Query) ([]model.Article, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("%w: eventregistry api key not set", ErrUnavailable)
	}
	if q.Terms() == "" {
		return nil, nil
	}

	endpoint := e.baseURL + articlesPath
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+e.params(q).Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: eventregistry http %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed erResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode eventregistry response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("%w: eventregistry: %s", ErrUnavailable, parsed.Error)
	}

	articles := make([]model.Article, 0, len(parsed.Articles.Results))
	for _, r := range parsed.Articles.Results {
		articles = append(articles, model.Article{
			URI:         r.URI,
			Title:       strings.TrimSpace(r.Title),
			SourceName:  erSourceName(r),
			URL:         r.URL,
			PublishedAt: parseTime(r.DateTime),
		})
	}

	return articles, nil
}

func (e *EventRegistry) params(q Query) url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	sort := q.Sort
	if sort == "" {
		sort = SortRelevance
	}

	params := url.Values{}
	params.Set("action", "getArticles")
	if q.Keywords != "" {
		params.Set("keyword", q.Keywords)
	} else {
		params.Set("conceptUri", ConceptURI(q.Concept))
	}
	params.Set("articlesCount", strconv.Itoa(limit))
	params.Set("articlesSortBy", string(sort))
	params.Set("articlesSortByAsc", "false")
	params.Set("dataType", "news")
	params.Set("resultType", "articles")
	params.Set("apiKey", e.apiKey)
	return params
}

// ConceptURI maps an entity name to its Wikipedia concept URI
func ConceptURI(entity string) string {
	return conceptURIPrefix + strings.ReplaceAll(strings.TrimSpace(entity), " ", "_")
}

func erSourceName(a erArticle) string {
	if a.Source.Title != "" {
		return a.Source.Title
	}
	if a.Source.URI != "" {
		parts := strings.Split(a.Source.URI, "/")
		return parts[len(parts)-1]
	}
	return "Unknown"
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
