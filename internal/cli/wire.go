package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustlens/internal/cache"
	"github.com/ppiankov/trustlens/internal/community"
	"github.com/ppiankov/trustlens/internal/content"
	"github.com/ppiankov/trustlens/internal/llm"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/pipeline"
	"github.com/ppiankov/trustlens/internal/search"
	"github.com/ppiankov/trustlens/internal/source"
	"github.com/ppiankov/trustlens/internal/verify"
	"github.com/ppiankov/trustlens/internal/worker"
)

// loadConfig merges defaults, the config file, TRUSTLENS_* variables and API keys
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

// applyEnv fills secrets and endpoints from well-known environment variables
func applyEnv(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = getenv("ANTHROPIC_API_KEY")
		case "gemini", "google":
			cfg.LLM.APIKey = getenv("GEMINI_API_KEY")
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = getenv("NEWS_API_KEY")
	}
	if cfg.Community.DatabaseURL == "" {
		cfg.Community.DatabaseURL = getenv("DATABASE_URL")
	}
	if cfg.Cache.RedisURL == "" {
		cfg.Cache.RedisURL = getenv("REDIS_URL")
	}
}

// app holds the wired pipeline and whatever needs closing afterwards
type app struct {
	cfg      *model.Config
	logger   zerolog.Logger
	resolver *source.Resolver
	assessor *pipeline.Assessor
	limiter  *worker.Limiter
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func wire(ctx context.Context, cfg *model.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	clock := clockwork.NewRealClock()

	registry, err := source.Load(cfg.Sources.Path)
	if err != nil {
		return nil, err
	}
	a.resolver = source.NewResolver(registry, logger.With().Str("component", "source").Logger())

	a.limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	providers := searchProviders(cfg, a.limiter, logger)
	var verifier *verify.Verifier
	if len(providers) > 0 {
		multi := search.NewMulti(logger.With().Str("component", "search").Logger(), providers...)
		verifier = verify.New(multi, a.resolver, cfg.Search, logger.With().Str("component", "verify").Logger())
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	floor, err := content.ParseScoreFloor(cfg.Content.ScoreFloor)
	if err != nil {
		return nil, err
	}
	analyzer := content.NewAnalyzer(provider, content.NewCooldown(clock, cfg.Content.Cooldown), content.Options{
		Floor:         floor,
		FullBudget:    cfg.Content.FullTextBudget,
		ExcerptBudget: cfg.Content.ExcerptBudget,
		MaxTokens:     cfg.LLM.MaxTokens,
	}, logger)

	backend, err := cache.New(cfg.Cache, clock)
	if err != nil {
		logger.Warn().Err(err).Msg("cache unavailable, continuing without it")
	}
	if closer, ok := backend.(io.Closer); ok {
		a.closers = append(a.closers, func() { _ = closer.Close() })
	}

	var reviews community.Provider = community.Static{}
	if cfg.Community.DatabaseURL != "" {
		pg, err := community.Connect(ctx, cfg.Community.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("community database unavailable, using default score")
		} else {
			reviews = pg
			a.closers = append(a.closers, pg.Close)
		}
	}

	a.assessor = pipeline.NewAssessor(pipeline.Deps{
		Cache:         cache.NewAssessmentCache(backend, clock, logger),
		Resolver:      a.resolver,
		Verifier:      verifier,
		Fetcher:       pipeline.NewFetcher(cfg.HTTP, cfg.Content.MinFullTextChars, a.limiter),
		Analyzer:      analyzer,
		Community:     reviews,
		Clock:         clock,
		Logger:        logger,
		TTL:           cfg.Cache.TTL,
		FetchFullText: cfg.Content.FetchFullText,
		Timeouts: pipeline.Timeouts{
			Search:    cfg.Search.Timeout,
			Fetch:     cfg.HTTP.Timeout,
			Community: cfg.Community.Timeout,
		},
	})

	return a, nil
}

// searchProviders builds the configured providers in fallback order
func searchProviders(cfg *model.Config, limiter *worker.Limiter, logger zerolog.Logger) []search.Provider {
	var providers []search.Provider
	for _, name := range cfg.Search.Providers {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "eventregistry":
			if cfg.Search.APIKey == "" {
				logger.Debug().Msg("eventregistry skipped: NEWS_API_KEY not set")
				continue
			}
			providers = append(providers, search.NewEventRegistry(cfg.Search.BaseURL, cfg.Search.APIKey,
				cfg.HTTP.UserAgent, cfg.Search.Timeout, limiter))
		case "googlenews":
			providers = append(providers, search.NewGoogleNews(cfg.Search.GoogleNewsURL, cfg.Search.Language,
				cfg.HTTP.UserAgent, cfg.Search.Timeout, limiter))
		case "":
		default:
			logger.Warn().Str("provider", name).Msg("unknown search provider ignored")
		}
	}
	return providers
}
