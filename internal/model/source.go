package model

// BiasLabel is the political lean assigned to a source in the reference dataset
type BiasLabel string

const (
	BiasLeft        BiasLabel = "left"
	BiasLeftCenter  BiasLabel = "left-center"
	BiasCenter      BiasLabel = "center"
	BiasRightCenter BiasLabel = "right-center"
	BiasRight       BiasLabel = "right"
	BiasUnknown     BiasLabel = "unknown"
)

// ParseBiasLabel normalizes a dataset value, defaulting to BiasUnknown
func ParseBiasLabel(s string) BiasLabel {
	switch BiasLabel(s) {
	case BiasLeft, BiasLeftCenter, BiasCenter, BiasRightCenter, BiasRight:
		return BiasLabel(s)
	default:
		return BiasUnknown
	}
}

// CategoryTier buckets sources by editorial standards
type CategoryTier string

const (
	Tier1       CategoryTier = "tier1"   // Wire services, public broadcasters, papers of record
	Tier2       CategoryTier = "tier2"   // Mainstream outlets with known slant or mixed record
	Tier3       CategoryTier = "tier3"   // Tabloids, hyper-partisan and unverified outlets
	TierUnknown CategoryTier = "unknown" // Not in the reference dataset
)

// ParseCategoryTier normalizes a dataset value, defaulting to TierUnknown
func ParseCategoryTier(s string) CategoryTier {
	switch CategoryTier(s) {
	case Tier1, Tier2, Tier3:
		return CategoryTier(s)
	default:
		return TierUnknown
	}
}

// SourceProfile is the reputation record for one news outlet
type SourceProfile struct {
	Domain            string       `json:"domain" yaml:"domain"`
	Name              string       `json:"name" yaml:"name"`
	TrustScore        int          `json:"trustScore" yaml:"trust"`
	TransparencyScore int          `json:"transparencyScore" yaml:"transparency"`
	BiasLabel         BiasLabel    `json:"biasLabel" yaml:"bias"`
	CategoryTier      CategoryTier `json:"categoryTier" yaml:"tier"`
}

// UnknownDomain is the domain recorded on synthetic default profiles
const UnknownDomain = "unknown"

// DefaultSourceProfile returns the neutral profile used for unresolved sources.
// The identifying string is kept as the profile name.
func DefaultSourceProfile(identifier string) SourceProfile {
	return SourceProfile{
		Domain:            UnknownDomain,
		Name:              identifier,
		TrustScore:        50,
		TransparencyScore: 50,
		BiasLabel:         BiasUnknown,
		CategoryTier:      TierUnknown,
	}
}
