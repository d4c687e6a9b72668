package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/ppiankov/trustlens/internal/model"
)

// Component weights; they must sum to 100
const (
	WeightSourceCredibility = 35
	WeightCrossSource       = 35
	WeightContentAnalysis   = 25
	WeightCommunity         = 5
)

// Risk thresholds on the final score
const (
	LowRiskMin    = 70
	MediumRiskMin = 50
)

// ErrInvalidWeights is returned when component weights do not sum to 100
var ErrInvalidWeights = errors.New("component weights must sum to 100")

// ApplyWeights stamps the standard weights onto the components
func ApplyWeights(c *model.Components) {
	c.SourceCredibility.Weight = WeightSourceCredibility
	c.CrossSourceVerification.Weight = WeightCrossSource
	c.AIContentAnalysis.Weight = WeightContentAnalysis
	c.CommunitySignals.Weight = WeightCommunity
}

// ValidateWeights checks the weight-sum invariant
func ValidateWeights(c model.Components) error {
	sum := 0
	for _, w := range c.Weights() {
		if w < 0 || w > 100 {
			return fmt.Errorf("%w: weight %d out of range", ErrInvalidWeights, w)
		}
		sum += w
	}
	if sum != 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidWeights, sum)
	}
	return nil
}

// Aggregate fuses the four components into the final score and risk level
func Aggregate(c model.Components) (int, model.RiskLevel) {
	parts := []model.ComponentScore{
		c.SourceCredibility,
		c.CrossSourceVerification.ComponentScore,
		c.AIContentAnalysis.ComponentScore,
		c.CommunitySignals,
	}

	total := 0
	for _, p := range parts {
		total += p.Score * p.Weight
	}

	final := clamp(int(math.Round(float64(total) / 100)))
	return final, Risk(final)
}

// Risk buckets a final score
func Risk(final int) model.RiskLevel {
	switch {
	case final >= LowRiskMin:
		return model.RiskLow
	case final >= MediumRiskMin:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

// Breakdown explains each component's contribution with its inputs and formula
func Breakdown(a *model.Assessment) []model.Signal {
	c := a.Scores
	src := a.SourceMetadata
	cross := c.CrossSourceVerification
	content := c.AIContentAnalysis

	signals := []model.Signal{
		{
			Type:        model.SignalSourceCredibility,
			Severity:    bandSeverity(c.SourceCredibility.Score),
			Description: fmt.Sprintf("Source %s (%s): %d/100", src.Name, src.CategoryTier, c.SourceCredibility.Score),
			Data: map[string]any{
				"trust":        src.TrustScore,
				"transparency": src.TransparencyScore,
				"bias":         string(src.BiasLabel),
				"score":        c.SourceCredibility.Score,
				"weight":       c.SourceCredibility.Weight,
				"formula":      "round(trust*0.6 + transparency*0.4)",
			},
		},
		{
			Type:        model.SignalCrossSource,
			Severity:    strengthSeverity(cross.Strength),
			Description: fmt.Sprintf("Corroboration %s: %d unique sources, %d/100", cross.Strength, cross.UniqueSourceCount(), cross.Score),
			Data: map[string]any{
				"matches":        len(cross.SourcesFound),
				"unique_sources": cross.UniqueSourceCount(),
				"total_checked":  cross.TotalChecked,
				"score":          cross.Score,
				"weight":         cross.Weight,
				"formula":        "sum(similarity*100*trust/100) / sum(trust/100), 30 when no matches",
			},
		},
		{
			Type:        model.SignalContentAnalysis,
			Severity:    bandSeverity(content.Score),
			Description: contentDescription(content),
			Data: map[string]any{
				"sensationalism":         content.Signals.Sensationalism,
				"emotional_manipulation": content.Signals.EmotionalManipulation,
				"clickbait":              content.Signals.ClickbaitProbability,
				"bias":                   content.Signals.BiasIndicators,
				"evidence_lack":          content.Signals.EvidenceLack,
				"path":                   string(content.Path),
				"score":                  content.Score,
				"weight":                 content.Weight,
				"formula":                "round(100 - mean(signals))",
			},
		},
		{
			Type:        model.SignalCommunity,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Community signals: %d/100", c.CommunitySignals.Score),
			Data: map[string]any{
				"score":  c.CommunitySignals.Score,
				"weight": c.CommunitySignals.Weight,
			},
		},
		{
			Type:        model.SignalFinalScore,
			Severity:    riskSeverity(a.RiskLevel),
			Description: fmt.Sprintf("Final score %d/100, %s risk", a.FinalScore, a.RiskLevel),
			Data: map[string]any{
				"score":   a.FinalScore,
				"risk":    string(a.RiskLevel),
				"formula": "round(sum(score_i*weight_i) / 100)",
			},
		},
	}

	return signals
}

func contentDescription(c model.ContentComponent) string {
	if c.FallbackReason != model.FallbackNone {
		return fmt.Sprintf("Content analysis (%s, %s): %d/100", c.Path, c.FallbackReason, c.Score)
	}
	return fmt.Sprintf("Content analysis (%s): %d/100", c.Path, c.Score)
}

func bandSeverity(score int) model.SignalSeverity {
	switch {
	case score >= LowRiskMin:
		return model.SeverityInfo
	case score >= MediumRiskMin:
		return model.SeverityWarning
	default:
		return model.SeverityCritical
	}
}

func strengthSeverity(s model.VerificationStrength) model.SignalSeverity {
	switch s {
	case model.StrengthStrong:
		return model.SeverityInfo
	case model.StrengthModerate:
		return model.SeverityWarning
	default:
		return model.SeverityCritical
	}
}

func riskSeverity(r model.RiskLevel) model.SignalSeverity {
	switch r {
	case model.RiskLow:
		return model.SeverityInfo
	case model.RiskMedium:
		return model.SeverityWarning
	default:
		return model.SeverityCritical
	}
}

func clamp(v int) int {
	return max(0, min(100, v))
}
