package score

import (
	"fmt"

	"github.com/ppiankov/trustlens/internal/model"
)

// Tag thresholds on the 0..100 badness signals
const (
	highSignal = 70
	lowSignal  = 30
	manyQuotes = 3
)

// Explain returns the explanation tags in fixed rule order.
// Every matching rule fires; metadata may be nil.
func Explain(c model.Components, source model.SourceProfile, meta *model.ArticleMetadata) []string {
	tags := make([]string, 0, 8)

	switch source.CategoryTier {
	case model.Tier1:
		tags = append(tags, "reputable source")
	case model.Tier3, model.TierUnknown:
		tags = append(tags, "unverified source")
	}

	n := c.CrossSourceVerification.UniqueSourceCount()
	switch {
	case n >= 5:
		tags = append(tags, fmt.Sprintf("confirmed by %d sources", n))
	case n >= 3:
		tags = append(tags, fmt.Sprintf("corroborated by %d sources", n))
	case n > 0:
		tags = append(tags, fmt.Sprintf("limited verification (%d sources)", n))
	default:
		tags = append(tags, "no cross-source verification")
	}

	s := c.AIContentAnalysis.Signals
	if s.Sensationalism > highSignal {
		tags = append(tags, "high sensationalism")
	}
	if s.ClickbaitProbability > highSignal {
		tags = append(tags, "clickbait indicators")
	}
	if s.BiasIndicators > highSignal {
		tags = append(tags, "potential bias")
	}

	switch {
	case s.EvidenceLack < lowSignal:
		tags = append(tags, "well-sourced")
	case s.EvidenceLack > highSignal:
		tags = append(tags, "lacks evidence")
	}

	switch {
	case s.EmotionalManipulation < lowSignal:
		tags = append(tags, "neutral tone")
	case s.EmotionalManipulation > highSignal:
		tags = append(tags, "emotional language")
	}

	if meta != nil {
		if meta.HasAuthor {
			tags = append(tags, "author identified")
		}
		if meta.HasDate {
			tags = append(tags, "date published")
		}
		if meta.QuoteCount >= manyQuotes {
			tags = append(tags, "multiple quotes")
		}
	}

	return tags
}
