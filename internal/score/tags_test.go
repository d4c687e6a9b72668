package score

import (
	"slices"
	"testing"

	"github.com/ppiankov/trustlens/internal/model"
)

func withSignals(s model.ContentSignals, unique int) model.Components {
	c := components(50, 50, 50, 50)
	c.AIContentAnalysis.Signals = s
	for i := range unique {
		c.CrossSourceVerification.UniqueSources = append(c.CrossSourceVerification.UniqueSources, string(rune('A'+i)))
	}
	return c
}

var neutralSignals = model.ContentSignals{
	Sensationalism:        50,
	EmotionalManipulation: 50,
	ClickbaitProbability:  50,
	BiasIndicators:        50,
	EvidenceLack:          50,
}

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		c        model.Components
		tier     model.CategoryTier
		meta     *model.ArticleMetadata
		expected []string
	}{
		{
			name:     "tier2 neutral no matches",
			c:        withSignals(neutralSignals, 0),
			tier:     model.Tier2,
			expected: []string{"no cross-source verification"},
		},
		{
			name:     "tier1 confirmed",
			c:        withSignals(neutralSignals, 6),
			tier:     model.Tier1,
			expected: []string{"reputable source", "confirmed by 6 sources"},
		},
		{
			name:     "corroborated",
			c:        withSignals(neutralSignals, 3),
			tier:     model.Tier2,
			expected: []string{"corroborated by 3 sources"},
		},
		{
			name:     "limited",
			c:        withSignals(neutralSignals, 2),
			tier:     model.Tier3,
			expected: []string{"unverified source", "limited verification (2 sources)"},
		},
		{
			name: "every content warning",
			c: withSignals(model.ContentSignals{
				Sensationalism:        71,
				EmotionalManipulation: 90,
				ClickbaitProbability:  80,
				BiasIndicators:        75,
				EvidenceLack:          85,
			}, 0),
			tier: model.TierUnknown,
			expected: []string{
				"unverified source",
				"no cross-source verification",
				"high sensationalism",
				"clickbait indicators",
				"potential bias",
				"lacks evidence",
				"emotional language",
			},
		},
		{
			name: "positive content and metadata",
			c: withSignals(model.ContentSignals{
				Sensationalism:        10,
				EmotionalManipulation: 20,
				ClickbaitProbability:  10,
				BiasIndicators:        20,
				EvidenceLack:          20,
			}, 5),
			tier: model.Tier1,
			meta: &model.ArticleMetadata{HasAuthor: true, HasDate: true, QuoteCount: 3},
			expected: []string{
				"reputable source",
				"confirmed by 5 sources",
				"well-sourced",
				"neutral tone",
				"author identified",
				"date published",
				"multiple quotes",
			},
		},
		{
			name: "boundaries do not fire",
			c: withSignals(model.ContentSignals{
				Sensationalism:        70,
				EmotionalManipulation: 30,
				ClickbaitProbability:  70,
				BiasIndicators:        70,
				EvidenceLack:          70,
			}, 0),
			tier:     model.Tier2,
			meta:     &model.ArticleMetadata{QuoteCount: 2},
			expected: []string{"no cross-source verification"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain(tt.c, model.SourceProfile{CategoryTier: tt.tier}, tt.meta)
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Explain() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
