package source

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/trustlens/internal/model"
)

// Rule names the resolution step that produced a profile
type Rule string

const (
	RuleDomain  Rule = "domain"  // Exact domain (or parent domain) match
	RuleName    Rule = "name"    // Case-insensitive name or domain key match
	RulePartial Rule = "partial" // Substring match either way
	RuleDefault Rule = "default" // Nothing matched
)

// minPartialLen guards the substring rule against tiny queries matching everything
const minPartialLen = 3

var domainPattern = regexp.MustCompile(`([a-z0-9-]+\.[a-z.]+)`)

// Resolution is the outcome of resolving a source identifier
type Resolution struct {
	Profile model.SourceProfile
	Rule    Rule
	Score   int
}

// Resolver maps free-form source names and URLs to reputation profiles
type Resolver struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewResolver creates a resolver over the given registry
func NewResolver(registry *Registry, logger zerolog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logger,
	}
}

// Resolve returns the profile for a source identifier. It never fails:
// unmatched identifiers get the neutral default profile.
func (r *Resolver) Resolve(identifier string) Resolution {
	query := strings.TrimSpace(identifier)
	if query == "" {
		return r.fallback("unknown")
	}

	// Domain extracted from a URL or a dotted name
	if domain := ExtractDomain(query); domain != "" {
		for _, candidate := range parentDomains(domain) {
			if p, ok := r.registry.Lookup(candidate); ok {
				return resolved(p, RuleDomain)
			}
		}
	}

	lower := strings.ToLower(query)

	for _, p := range r.registry.entries {
		if p.Domain == lower || strings.ToLower(p.Name) == lower {
			return resolved(p, RuleName)
		}
	}

	if len(lower) >= minPartialLen {
		for _, p := range r.registry.entries {
			name := strings.ToLower(p.Name)
			if strings.Contains(lower, p.Domain) || strings.Contains(p.Domain, lower) ||
				strings.Contains(lower, name) || strings.Contains(name, lower) {
				return resolved(p, RulePartial)
			}
		}
	}

	return r.fallback(query)
}

func (r *Resolver) fallback(identifier string) Resolution {
	r.logger.Warn().Str("source", identifier).Msg("unknown source, using default credibility")
	return resolved(model.DefaultSourceProfile(identifier), RuleDefault)
}

func resolved(p model.SourceProfile, rule Rule) Resolution {
	return Resolution{
		Profile: p,
		Rule:    rule,
		Score:   SourceScore(p),
	}
}

// SourceScore blends trust and transparency 60/40
func SourceScore(p model.SourceProfile) int {
	score := int(math.Round(float64(p.TrustScore)*0.6 + float64(p.TransparencyScore)*0.4))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ExtractDomain pulls a bare host out of a URL or a dotted source name.
// It returns "" when the identifier carries no domain.
func ExtractDomain(identifier string) string {
	s := strings.TrimSpace(identifier)

	if parsed, err := url.Parse(s); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	}

	if !strings.Contains(s, ".") {
		return ""
	}

	m := domainPattern.FindString(strings.ToLower(s))
	if m == "" {
		return ""
	}
	return strings.TrimPrefix(strings.TrimRight(m, "."), "www.")
}

// parentDomains lists domain followed by each parent with at least two labels
func parentDomains(domain string) []string {
	out := []string{domain}
	labels := strings.Split(domain, ".")
	for i := 1; i < len(labels)-1; i++ {
		out = append(out, strings.Join(labels[i:], "."))
	}
	return out
}
