// Package content scores the wording of an article: a model-backed path with a
// deterministic heuristic fallback guarded by a process-wide quota cooldown.
package content

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ppiankov/trustlens/internal/llm"
	"github.com/ppiankov/trustlens/internal/model"
)

const aiTemperature = 0.2

// Input is the text available for one subject
type Input struct {
	Title    string
	Excerpt  string
	FullText string
}

// Options tune the analyzer; zero values take defaults
type Options struct {
	Floor         ScoreFloor
	FullBudget    int
	ExcerptBudget int
	MaxTokens     int
}

// Analyzer produces the content component for a subject
type Analyzer struct {
	provider llm.Provider
	cooldown *Cooldown
	opts     Options
	logger   zerolog.Logger
}

// NewAnalyzer creates an analyzer. A nil provider always takes the heuristic path.
func NewAnalyzer(provider llm.Provider, cooldown *Cooldown, opts Options, logger zerolog.Logger) *Analyzer {
	if cooldown == nil {
		cooldown = NewCooldown(nil, DefaultCooldown)
	}
	if opts.Floor == "" {
		opts.Floor = FloorNone
	}
	if opts.FullBudget <= 0 {
		opts.FullBudget = 1200
	}
	if opts.ExcerptBudget <= 0 {
		opts.ExcerptBudget = 800
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 80
	}

	return &Analyzer{
		provider: provider,
		cooldown: cooldown,
		opts:     opts,
		logger:   logger.With().Str("component", "content").Logger(),
	}
}

// Analyze never fails: every AI problem degrades to the heuristic path
func (a *Analyzer) Analyze(ctx context.Context, in Input) model.ContentComponent {
	signals, reason := a.aiSignals(ctx, in)

	path := model.PathAI
	if reason != model.FallbackNone {
		path = model.PathHeuristic
		signals = Heuristic(in)
	}

	return model.ContentComponent{
		ComponentScore: model.ComponentScore{Score: Score(signals.Values(), a.opts.Floor)},
		Signals:        signals,
		Path:           path,
		FallbackReason: reason,
	}
}

func (a *Analyzer) aiSignals(ctx context.Context, in Input) (model.ContentSignals, model.FallbackReason) {
	if a.provider == nil {
		return model.ContentSignals{}, model.FallbackDisabled
	}
	if a.cooldown.Active() {
		a.logger.Debug().Dur("remaining", a.cooldown.Remaining()).Msg("AI cooldown active, using heuristics")
		return model.ContentSignals{}, model.FallbackCooldown
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(in, a.opts.FullBudget, a.opts.ExcerptBudget),
		MaxTokens:   a.opts.MaxTokens,
		Temperature: aiTemperature,
	})
	if err != nil {
		reason := classify(err)
		if reason == model.FallbackQuota {
			a.cooldown.Trip()
		}
		a.logger.Warn().Err(err).
			Str("provider", a.provider.Name()).
			Str("reason", string(reason)).
			Msg("AI content scoring failed, using heuristics")
		return model.ContentSignals{}, reason
	}

	signals, err := ParseSignals(resp.Text)
	if err != nil {
		reason := classify(err)
		a.logger.Warn().Err(err).
			Str("provider", a.provider.Name()).
			Str("reason", string(reason)).
			Msg("AI reply unusable, using heuristics")
		return model.ContentSignals{}, reason
	}

	return signals, model.FallbackNone
}

func classify(err error) model.FallbackReason {
	switch {
	case llm.IsQuotaError(err):
		return model.FallbackQuota
	case errors.Is(err, llm.ErrMalformedResponse):
		return model.FallbackMalformed
	default:
		return model.FallbackError
	}
}
