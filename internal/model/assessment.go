package model

import "time"

// RiskLevel is the coarse bucket derived from the final score
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// VerificationStrength classifies how many distinct outlets corroborate a story
type VerificationStrength string

const (
	StrengthStrong   VerificationStrength = "strong"
	StrengthModerate VerificationStrength = "moderate"
	StrengthWeak     VerificationStrength = "weak"
)

// AnalysisPath records which content analysis path produced the signals
type AnalysisPath string

const (
	PathAI        AnalysisPath = "ai"
	PathHeuristic AnalysisPath = "heuristic"
)

// FallbackReason explains why the heuristic path was taken
type FallbackReason string

const (
	FallbackNone      FallbackReason = ""
	FallbackDisabled  FallbackReason = "disabled"  // No AI provider configured
	FallbackCooldown  FallbackReason = "cooldown"  // Quota cooldown window active
	FallbackQuota     FallbackReason = "quota"     // Provider reported quota/rate limit
	FallbackMalformed FallbackReason = "malformed" // Response lacked five integers
	FallbackError     FallbackReason = "error"     // Transport or API failure
)

// ContentSignals are the five badness signals (0 = best, 100 = worst)
type ContentSignals struct {
	Sensationalism        int `json:"sensationalism"`
	EmotionalManipulation int `json:"emotionalManipulation"`
	ClickbaitProbability  int `json:"clickbaitProbability"`
	BiasIndicators        int `json:"biasIndicators"`
	EvidenceLack          int `json:"evidenceLack"`
}

// Values returns the signals in canonical order
func (s ContentSignals) Values() [5]int {
	return [5]int{s.Sensationalism, s.EmotionalManipulation, s.ClickbaitProbability, s.BiasIndicators, s.EvidenceLack}
}

// ComponentScore is one weighted input to the final score
type ComponentScore struct {
	Score  int `json:"score"`
	Weight int `json:"weight"`
}

// CrossSourceComponent carries corroboration details alongside the score
type CrossSourceComponent struct {
	ComponentScore
	SourcesFound  []SimilarArticleMatch `json:"sourcesFound"`
	UniqueSources []string              `json:"uniqueSources"`
	TotalChecked  int                   `json:"totalChecked"`
	Strength      VerificationStrength  `json:"strength"`
}

// UniqueSourceCount is the number of distinct corroborating outlets
func (c CrossSourceComponent) UniqueSourceCount() int {
	return len(c.UniqueSources)
}

// ContentComponent carries the raw signals alongside the score
type ContentComponent struct {
	ComponentScore
	Signals        ContentSignals `json:"signals"`
	Path           AnalysisPath   `json:"path"`
	FallbackReason FallbackReason `json:"fallbackReason,omitempty"`
}

// Components groups the four weighted inputs of an assessment
type Components struct {
	SourceCredibility       ComponentScore       `json:"sourceCredibility"`
	CrossSourceVerification CrossSourceComponent `json:"crossSourceVerification"`
	AIContentAnalysis       ContentComponent     `json:"aiContentAnalysis"`
	CommunitySignals        ComponentScore       `json:"communitySignals"`
}

// Weights returns the four component weights in canonical order
func (c Components) Weights() [4]int {
	return [4]int{
		c.SourceCredibility.Weight,
		c.CrossSourceVerification.Weight,
		c.AIContentAnalysis.Weight,
		c.CommunitySignals.Weight,
	}
}

// Assessment is the credibility result of record for one subject.
// It is never mutated after creation; recomputation produces a new value.
type Assessment struct {
	SubjectID       string           `json:"subjectId"`
	FinalScore      int              `json:"finalScore"`
	RiskLevel       RiskLevel        `json:"riskLevel"`
	Scores          Components       `json:"scores"`
	ExplanationTags []string         `json:"explanationTags"`
	SourceMetadata  SourceProfile    `json:"sourceMetadata"`
	ArticleMetadata *ArticleMetadata `json:"articleMetadata,omitempty"`
	ComputedAt      time.Time        `json:"computedAt"`
	ExpiresAt       time.Time        `json:"expiresAt"`
}

// ValidAt reports whether the assessment may still be served at t
func (a *Assessment) ValidAt(t time.Time) bool {
	return t.Before(a.ExpiresAt)
}

// AssessResult wraps an assessment with its provenance
type AssessResult struct {
	Assessment *Assessment `json:"credibility"`
	FromCache  bool        `json:"fromCache"`
}
