package model

// Signal is one line of the transparent score breakdown
type Signal struct {
	Type        SignalType     `json:"type"`           // Signal classification
	Severity    SignalSeverity `json:"severity"`       // info, warning, critical
	Description string         `json:"description"`    // Human-readable description
	Data        map[string]any `json:"data,omitempty"` // Inputs and formula
}

// SignalType classifies the breakdown line
type SignalType string

const (
	SignalSourceCredibility SignalType = "source_credibility"
	SignalCrossSource       SignalType = "cross_source_verification"
	SignalContentAnalysis   SignalType = "content_analysis"
	SignalCommunity         SignalType = "community_signals"
	SignalFinalScore        SignalType = "final_score"
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
