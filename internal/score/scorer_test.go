package score

import (
	"errors"
	"testing"

	"github.com/ppiankov/trustlens/internal/model"
)

func components(source, cross, content, community int) model.Components {
	c := model.Components{
		SourceCredibility:       model.ComponentScore{Score: source},
		CrossSourceVerification: model.CrossSourceComponent{ComponentScore: model.ComponentScore{Score: cross}},
		AIContentAnalysis:       model.ContentComponent{ComponentScore: model.ComponentScore{Score: content}},
		CommunitySignals:        model.ComponentScore{Score: community},
	}
	ApplyWeights(&c)
	return c
}

func TestWeightsSumTo100(t *testing.T) {
	if sum := WeightSourceCredibility + WeightCrossSource + WeightContentAnalysis + WeightCommunity; sum != 100 {
		t.Fatalf("weights sum to %d", sum)
	}
	if err := ValidateWeights(components(0, 0, 0, 0)); err != nil {
		t.Errorf("standard weights rejected: %v", err)
	}
}

func TestValidateWeights_Invalid(t *testing.T) {
	c := components(50, 50, 50, 50)
	c.CommunitySignals.Weight = 10
	if err := ValidateWeights(c); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}

	c = components(50, 50, 50, 50)
	c.SourceCredibility.Weight = -5
	c.CrossSourceVerification.Weight = 75
	if err := ValidateWeights(c); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights for negative weight, got %v", err)
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		c         model.Components
		wantScore int
		wantRisk  model.RiskLevel
	}{
		{"all neutral", components(50, 50, 50, 50), 50, model.RiskMedium},
		{"perfect", components(100, 100, 100, 100), 100, model.RiskLow},
		{"zero", components(0, 0, 0, 0), 0, model.RiskHigh},
		// 50*35 + 30*35 + 29*25 + 50*5 = 3775
		{"sensational unknown", components(50, 30, 29, 50), 38, model.RiskHigh},
		// 94*35 + 90*35 + 68*25 + 50*5 = 8390
		{"reputable corroborated", components(94, 90, 68, 50), 84, model.RiskLow},
		// 1*35 + 1*25 = 60 -> 0.6 -> 1
		{"rounding", components(1, 0, 1, 0), 1, model.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, risk := Aggregate(tt.c)
			if score != tt.wantScore || risk != tt.wantRisk {
				t.Errorf("Aggregate() = %d/%s, expected %d/%s", score, risk, tt.wantScore, tt.wantRisk)
			}
			if score < 0 || score > 100 {
				t.Errorf("score %d out of range", score)
			}
		})
	}
}

func TestRisk_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		risk  model.RiskLevel
	}{
		{100, model.RiskLow},
		{70, model.RiskLow},
		{69, model.RiskMedium},
		{50, model.RiskMedium},
		{49, model.RiskHigh},
		{0, model.RiskHigh},
	}
	for _, tt := range tests {
		if got := Risk(tt.score); got != tt.risk {
			t.Errorf("Risk(%d) = %s, expected %s", tt.score, got, tt.risk)
		}
	}
}

func TestBreakdown(t *testing.T) {
	c := components(94, 30, 68, 50)
	c.CrossSourceVerification.Strength = model.StrengthWeak
	c.AIContentAnalysis.Path = model.PathHeuristic
	c.AIContentAnalysis.FallbackReason = model.FallbackCooldown
	final, risk := Aggregate(c)

	a := &model.Assessment{
		FinalScore:     final,
		RiskLevel:      risk,
		Scores:         c,
		SourceMetadata: model.SourceProfile{Name: "Reuters", TrustScore: 95, TransparencyScore: 92, CategoryTier: model.Tier1},
	}

	signals := Breakdown(a)
	if len(signals) != 5 {
		t.Fatalf("expected 5 breakdown lines, got %d", len(signals))
	}

	expectedTypes := []model.SignalType{
		model.SignalSourceCredibility,
		model.SignalCrossSource,
		model.SignalContentAnalysis,
		model.SignalCommunity,
		model.SignalFinalScore,
	}
	for i, s := range signals {
		if s.Type != expectedTypes[i] {
			t.Errorf("line %d type = %s, expected %s", i, s.Type, expectedTypes[i])
		}
		if s.Description == "" {
			t.Errorf("line %d has no description", i)
		}
	}

	if signals[0].Severity != model.SeverityInfo {
		t.Errorf("expected info severity for trusted source, got %s", signals[0].Severity)
	}
	if signals[1].Severity != model.SeverityCritical {
		t.Errorf("expected critical severity for weak corroboration, got %s", signals[1].Severity)
	}
	if signals[0].Data["formula"] == nil {
		t.Error("expected formula on source line")
	}
	if signals[2].Description != "Content analysis (heuristic, cooldown): 68/100" {
		t.Errorf("unexpected content description %q", signals[2].Description)
	}
}
