package verify

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/trustlens/internal/extract"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/search"
	"github.com/ppiankov/trustlens/internal/source"
)

const (
	// NoCorroborationScore is used when nothing similar was found
	NoCorroborationScore = 30

	maxSearchTerms    = 4
	minPrimaryQuery   = 10
	minSearchLen      = 6
	maxTitleWords     = 5
	minTitleWordLen   = 5
	maxUniqueSources  = 10
	strongSourceCount = 5
	moderateSources   = 3
)

var titleStopWords = map[string]bool{
	"about": true, "after": true, "before": true, "could": true, "should": true,
	"would": true, "their": true, "there": true, "these": true, "those": true,
}

// Subject identifies the article being verified so it can be excluded
// from its own corroboration
type Subject struct {
	Title string
	URI   string
	URL   string
}

// Verifier searches other outlets for the same story and scores the overlap
type Verifier struct {
	provider      search.Provider
	resolver      *source.Resolver
	primaryLimit  int
	fallbackLimit int
	minSimilarity float64
	maxMatches    int
	logger        zerolog.Logger
}

// New creates a verifier
func New(provider search.Provider, resolver *source.Resolver, cfg model.SearchConfig, logger zerolog.Logger) *Verifier {
	v := &Verifier{
		provider:      provider,
		resolver:      resolver,
		primaryLimit:  cfg.PrimaryLimit,
		fallbackLimit: cfg.FallbackLimit,
		minSimilarity: cfg.MinSimilarity,
		maxMatches:    cfg.MaxMatches,
		logger:        logger,
	}
	if v.primaryLimit <= 0 {
		v.primaryLimit = 50
	}
	if v.fallbackLimit <= 0 {
		v.fallbackLimit = 40
	}
	if v.minSimilarity <= 0 {
		v.minSimilarity = 0.20
	}
	if v.maxMatches <= 0 {
		v.maxMatches = 20
	}
	return v
}

// Verify returns the cross-source component for subject. Search failures
// are logged and yield the no-corroboration result; they never surface as errors.
func (v *Verifier) Verify(ctx context.Context, subject Subject) model.CrossSourceComponent {
	articles := v.search(ctx, subject.Title)
	matches := v.Match(subject, articles)
	return v.Score(matches)
}

func (v *Verifier) search(ctx context.Context, title string) []model.Article {
	if v.provider == nil || strings.TrimSpace(title) == "" {
		return nil
	}

	terms := extract.ExtractTerms(title)

	var articles []model.Article
	if query := SearchQuery(title, terms); len(query) >= minSearchLen {
		found, err := v.provider.Search(ctx, search.Query{
			Keywords: query,
			Sort:     search.SortRelevance,
			Limit:    v.primaryLimit,
		})
		if err != nil {
			v.logger.Warn().Err(err).Str("query", query).Msg("keyword search failed")
		}
		articles = found
	}

	if len(articles) == 0 && len(terms.Entities) > 0 && ctx.Err() == nil {
		concept := terms.Entities[0].Text
		found, err := v.provider.Search(ctx, search.Query{
			Concept: concept,
			Sort:    search.SortDate,
			Limit:   v.fallbackLimit,
		})
		if err != nil {
			v.logger.Warn().Err(err).Str("concept", concept).Msg("concept search failed")
		}
		articles = found
	}

	return articles
}

// SearchQuery builds the primary keyword query for a title: the first four
// entities and keywords, or failing that up to five long title words
func SearchQuery(title string, terms extract.Terms) string {
	texts := terms.Texts()
	if len(texts) > maxSearchTerms {
		texts = texts[:maxSearchTerms]
	}
	query := strings.Join(texts, " ")
	if len(query) >= minPrimaryQuery {
		return query
	}

	var words []string
	for _, w := range strings.Split(title, " ") {
		if len([]rune(w)) < minTitleWordLen || titleStopWords[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
		if len(words) == maxTitleWords {
			break
		}
	}
	return strings.Join(words, " ")
}

// Match drops the subject itself, keeps articles whose title similarity
// exceeds the threshold and returns the best matches, most similar first
func (v *Verifier) Match(subject Subject, articles []model.Article) []model.SimilarArticleMatch {
	title := strings.ToLower(subject.Title)

	var matches []model.SimilarArticleMatch
	for _, a := range articles {
		if isSubject(subject, a) {
			continue
		}
		sim := Similarity(title, strings.ToLower(a.Title))
		if sim <= v.minSimilarity {
			continue
		}
		matches = append(matches, model.SimilarArticleMatch{
			Title:           a.Title,
			SourceName:      a.SourceName,
			URL:             a.URL,
			SimilarityScore: sim,
			PublishedAt:     a.PublishedAt,
		})
	}

	slices.SortStableFunc(matches, func(a, b model.SimilarArticleMatch) int {
		switch {
		case a.SimilarityScore > b.SimilarityScore:
			return -1
		case a.SimilarityScore < b.SimilarityScore:
			return 1
		}
		return 0
	})

	if len(matches) > v.maxMatches {
		matches = matches[:v.maxMatches]
	}
	return matches
}

func isSubject(subject Subject, a model.Article) bool {
	if subject.URI != "" && a.URI == subject.URI {
		return true
	}
	return subject.URL != "" && strings.TrimSpace(a.URL) == strings.TrimSpace(subject.URL)
}

// Score weights each match's similarity by its outlet's trust. Every match
// counts toward the mean; duplicate outlets count once toward strength.
func (v *Verifier) Score(matches []model.SimilarArticleMatch) model.CrossSourceComponent {
	result := NoMatches()
	if len(matches) == 0 {
		return result
	}

	trust := make(map[string]float64)
	seen := make(map[string]bool)
	var weighted, total float64

	for _, m := range matches {
		key := strings.ToLower(strings.TrimSpace(m.SourceName))

		w, ok := trust[key]
		if !ok {
			w = float64(v.resolver.Resolve(m.SourceName).Profile.TrustScore) / 100
			trust[key] = w
		}
		weighted += m.SimilarityScore * 100 * w
		total += w

		if !seen[key] {
			seen[key] = true
			result.UniqueSources = append(result.UniqueSources, m.SourceName)
		}
	}

	score := float64(NoCorroborationScore)
	if total > 0 {
		score = weighted / total
	}

	unique := len(result.UniqueSources)
	if len(result.UniqueSources) > maxUniqueSources {
		result.UniqueSources = result.UniqueSources[:maxUniqueSources]
	}

	result.Score = clamp(int(math.Round(score)))
	result.SourcesFound = matches
	result.TotalChecked = len(matches)
	result.Strength = Strength(unique)

	return result
}

// NoMatches is the result recorded when nothing corroborates the subject
func NoMatches() model.CrossSourceComponent {
	return model.CrossSourceComponent{
		ComponentScore: model.ComponentScore{Score: NoCorroborationScore},
		SourcesFound:   []model.SimilarArticleMatch{},
		UniqueSources:  []string{},
		Strength:       model.StrengthWeak,
	}
}

// Strength classifies corroboration by the number of distinct outlets
func Strength(uniqueSources int) model.VerificationStrength {
	switch {
	case uniqueSources >= strongSourceCount:
		return model.StrengthStrong
	case uniqueSources >= moderateSources:
		return model.StrengthModerate
	default:
		return model.StrengthWeak
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
