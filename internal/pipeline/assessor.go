package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/trustlens/internal/cache"
	"github.com/ppiankov/trustlens/internal/community"
	"github.com/ppiankov/trustlens/internal/content"
	"github.com/ppiankov/trustlens/internal/extract"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/score"
	"github.com/ppiankov/trustlens/internal/source"
	"github.com/ppiankov/trustlens/internal/verify"
)

// ErrAssessmentFailed is returned only for invalid requests or when the
// caller gives up before the branches join
var ErrAssessmentFailed = errors.New("assessment failed")

const (
	unknownSourceName = "Unknown Source"
	minSourceLen      = 3
	excerptLen        = 500
	textTitleLen      = 120
	textIDLen         = 16
)

// Request describes one subject to assess
type Request struct {
	SubjectID string // article id or URI; defaults to URL
	Title     string
	Excerpt   string
	Body      string // analyzed in full when no article text is available
	Source    string
	URL       string

	// Article is pre-fetched full text; when set the fetch branch is skipped
	Article *model.FullText
}

// ArticleFetcher retrieves full article text
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, rawURL string) (*model.FullText, error)
}

// Timeouts bound each branch independently
type Timeouts struct {
	Search    time.Duration
	Fetch     time.Duration
	Community time.Duration
}

// Deps wires the collaborators of an Assessor. Resolver is required; the
// rest fall back to offline behavior when nil.
type Deps struct {
	Cache         *cache.AssessmentCache
	Resolver      *source.Resolver
	Verifier      *verify.Verifier
	Fetcher       ArticleFetcher
	Analyzer      *content.Analyzer
	Community     community.Provider
	Clock         clockwork.Clock
	Logger        zerolog.Logger
	Timeouts      Timeouts
	TTL           time.Duration
	FetchFullText bool
}

// Assessor runs the credibility pipeline: cache, four concurrent branches,
// aggregation, tags, cache write
type Assessor struct {
	deps   Deps
	flight singleflight.Group
}

// NewAssessor creates an assessor, filling defaults
func NewAssessor(deps Deps) *Assessor {
	if deps.Cache == nil {
		deps.Cache = cache.NewAssessmentCache(nil, deps.Clock, deps.Logger)
	}
	if deps.Analyzer == nil {
		deps.Analyzer = content.NewAnalyzer(nil, nil, content.Options{}, deps.Logger)
	}
	if deps.Community == nil {
		deps.Community = community.Static{}
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.TTL <= 0 {
		deps.TTL = cache.DefaultTTL
	}
	if deps.Timeouts.Search <= 0 {
		deps.Timeouts.Search = 15 * time.Second
	}
	if deps.Timeouts.Fetch <= 0 {
		deps.Timeouts.Fetch = 25 * time.Second
	}
	if deps.Timeouts.Community <= 0 {
		deps.Timeouts.Community = 5 * time.Second
	}
	return &Assessor{deps: deps}
}

// Assess returns the cached assessment or computes a new one
func (a *Assessor) Assess(ctx context.Context, req Request) (*model.AssessResult, error) {
	if req.SubjectID == "" {
		req.SubjectID = req.URL
	}
	if req.SubjectID == "" {
		return nil, fmt.Errorf("%w: request has no subject id or url", ErrAssessmentFailed)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: request %s has no title", ErrAssessmentFailed, req.SubjectID)
	}

	if cached, ok := a.deps.Cache.Get(ctx, req.SubjectID); ok {
		return &model.AssessResult{Assessment: cached, FromCache: true}, nil
	}

	// one computation per subject; it outlives a cancelled caller so the
	// result still lands in the cache for the others
	ch := a.flight.DoChan(req.SubjectID, func() (any, error) {
		return a.compute(context.WithoutCancel(ctx), req)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrAssessmentFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return &model.AssessResult{Assessment: res.Val.(*model.Assessment)}, nil
	}
}

// AssessURL fetches the page once, derives title and excerpt from it and
// reuses the text for content analysis
func (a *Assessor) AssessURL(ctx context.Context, rawURL string) (*model.AssessResult, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrAssessmentFailed, rawURL)
	}

	if cached, ok := a.deps.Cache.Get(ctx, rawURL); ok {
		return &model.AssessResult{Assessment: cached, FromCache: true}, nil
	}

	req := Request{SubjectID: rawURL, URL: rawURL, Title: SubjectFromURL(rawURL)}

	if a.deps.FetchFullText && a.deps.Fetcher != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, a.deps.Timeouts.Fetch)
		ft, err := a.deps.Fetcher.FetchArticle(fetchCtx, rawURL)
		cancel()
		if err != nil {
			a.deps.Logger.Warn().Err(err).Str("subject_id", rawURL).Msg("full text unavailable, assessing from url")
		} else {
			req.Article = ft
			if ft.Title != "" {
				req.Title = ft.Title
			}
			req.Excerpt = ft.Description
			req.Source = ft.SiteName
		}
	}

	return a.Assess(ctx, req)
}

// AssessText scores raw text. The subject id is derived from the content.
func (a *Assessor) AssessText(ctx context.Context, text, title string) (*model.AssessResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrAssessmentFailed)
	}
	if title == "" {
		title = firstLine(text, textTitleLen)
	}

	meta := extract.Metadata(text)
	return a.Assess(ctx, Request{
		SubjectID: TextSubjectID(text),
		Title:     title,
		Excerpt:   truncateRunes(text, excerptLen),
		Article: &model.FullText{
			Text:       text,
			WordCount:  meta.WordCount,
			References: extract.References(text),
			Metadata:   meta,
		},
	})
}

// Cached returns a stored assessment without computing anything
func (a *Assessor) Cached(ctx context.Context, subjectID string) (*model.Assessment, bool) {
	return a.deps.Cache.Get(ctx, subjectID)
}

// Invalidate drops the stored assessment for a subject
func (a *Assessor) Invalidate(ctx context.Context, subjectID string) error {
	return a.deps.Cache.Invalidate(ctx, subjectID)
}

func (a *Assessor) compute(ctx context.Context, req Request) (*model.Assessment, error) {
	logger := a.deps.Logger.With().
		Str("request_id", uuid.NewString()).
		Str("subject_id", req.SubjectID).
		Logger()
	start := a.deps.Clock.Now()

	var (
		resolution source.Resolution
		cross      model.CrossSourceComponent
		analysis   model.ContentComponent
		fullText   *model.FullText
		communityS = community.DefaultScore
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resolution = a.deps.Resolver.Resolve(sourceIdentifier(req))
		return nil
	})

	g.Go(func() error {
		if a.deps.Verifier == nil {
			cross = verify.NoMatches()
			return nil
		}
		sctx, cancel := context.WithTimeout(gctx, a.deps.Timeouts.Search)
		defer cancel()
		cross = a.deps.Verifier.Verify(sctx, verify.Subject{Title: req.Title, URI: req.SubjectID, URL: req.URL})
		return nil
	})

	g.Go(func() error {
		fullText = a.fullText(gctx, req, logger)
		in := content.Input{Title: req.Title, Excerpt: excerpt(req)}
		switch {
		case fullText != nil:
			in.FullText = fullText.Text
		case req.Body != "":
			in.FullText = req.Body
		}
		analysis = a.deps.Analyzer.Analyze(gctx, in)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(gctx, a.deps.Timeouts.Community)
		defer cancel()
		s, ok, err := a.deps.Community.Score(cctx, req.SubjectID)
		if err != nil {
			logger.Warn().Err(err).Msg("community lookup failed")
			return nil
		}
		if ok {
			communityS = s
		}
		return nil
	})

	// branches degrade instead of failing
	_ = g.Wait()

	components := model.Components{
		SourceCredibility:       model.ComponentScore{Score: resolution.Score},
		CrossSourceVerification: cross,
		AIContentAnalysis:       analysis,
		CommunitySignals:        model.ComponentScore{Score: communityS},
	}
	score.ApplyWeights(&components)
	if err := score.ValidateWeights(components); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssessmentFailed, err)
	}

	final, risk := score.Aggregate(components)

	var meta *model.ArticleMetadata
	if fullText != nil {
		m := fullText.Metadata
		meta = &m
	}

	now := a.deps.Clock.Now().UTC()
	assessment := &model.Assessment{
		SubjectID:       req.SubjectID,
		FinalScore:      final,
		RiskLevel:       risk,
		Scores:          components,
		ExplanationTags: score.Explain(components, resolution.Profile, meta),
		SourceMetadata:  resolution.Profile,
		ArticleMetadata: meta,
		ComputedAt:      now,
		ExpiresAt:       now.Add(a.deps.TTL),
	}

	logger.Info().
		Int("final_score", final).
		Str("risk", string(risk)).
		Str("source", resolution.Profile.Name).
		Str("rule", string(resolution.Rule)).
		Int("unique_sources", cross.UniqueSourceCount()).
		Str("content_path", string(analysis.Path)).
		Dur("elapsed", a.deps.Clock.Since(start)).
		Msg("assessment computed")

	_ = a.deps.Cache.Put(ctx, assessment)

	return assessment, nil
}

func (a *Assessor) fullText(ctx context.Context, req Request, logger zerolog.Logger) *model.FullText {
	if req.Article != nil {
		return req.Article
	}
	if !a.deps.FetchFullText || a.deps.Fetcher == nil || req.URL == "" {
		return nil
	}

	fctx, cancel := context.WithTimeout(ctx, a.deps.Timeouts.Fetch)
	defer cancel()

	ft, err := a.deps.Fetcher.FetchArticle(fctx, req.URL)
	if err != nil {
		logger.Warn().Err(err).Str("url", req.URL).Msg("full text unavailable, using excerpt")
		return nil
	}
	return ft
}

// sourceIdentifier falls back to the article host when the source string is unusable
func sourceIdentifier(req Request) string {
	s := strings.TrimSpace(req.Source)
	if s != "" && s != unknownSourceName && len(s) >= minSourceLen {
		return s
	}
	if req.URL != "" {
		if u, err := url.Parse(req.URL); err == nil && u.Hostname() != "" {
			return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		}
	}
	return s
}

func excerpt(req Request) string {
	if req.Excerpt != "" {
		return req.Excerpt
	}
	return truncateRunes(req.Body, excerptLen)
}

// TextSubjectID derives a stable id for raw text submissions
func TextSubjectID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "text:" + hex.EncodeToString(sum[:])[:textIDLen]
}

func firstLine(text string, n int) string {
	line, _, _ := strings.Cut(text, "\n")
	return truncateRunes(strings.TrimSpace(line), n)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
