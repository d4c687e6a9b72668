package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ppiankov/trustlens/internal/model"
)

// ErrUnavailable is returned when a provider cannot be queried
var ErrUnavailable = errors.New("search provider unavailable")

// Sort orders search results
type Sort string

const (
	SortRelevance Sort = "rel"
	SortDate      Sort = "date"
)

// Query is a news search request. Exactly one of Keywords or Concept is set;
// Concept is an entity name searched as a topic.
type Query struct {
	Keywords string
	Concept  string
	Sort     Sort
	Limit    int
}

// Terms returns whichever of Keywords or Concept is set
func (q Query) Terms() string {
	if q.Keywords != "" {
		return q.Keywords
	}
	return q.Concept
}

// Provider searches a news index
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]model.Article, error)
}

// Multi tries providers in order until one returns results
type Multi struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewMulti creates a provider chain
func NewMulti(logger zerolog.Logger, providers ...Provider) *Multi {
	return &Multi{
		providers: providers,
		logger:    logger,
	}
}

// Name returns the provider name
func (m *Multi) Name() string {
	return "multi"
}

// Search returns the first non-empty result set. It fails only when every
// provider failed.
func (m *Multi) Search(ctx context.Context, q Query) ([]model.Article, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", ErrUnavailable)
	}

	var errs []error
	for _, p := range m.providers {
		articles, err := p.Search(ctx, q)
		if err != nil {
			m.logger.Warn().Err(err).Str("provider", p.Name()).Msg("search provider failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			}
			continue
		}
		if len(articles) > 0 {
			return articles, nil
		}
	}

	if len(errs) == len(m.providers) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return nil, nil
}
