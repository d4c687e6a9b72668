package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete trustlens configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Content      ContentConfig      `yaml:"content" mapstructure:"content"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Community    CommunityConfig    `yaml:"community" mapstructure:"community"`
	Sources      SourcesConfig      `yaml:"sources" mapstructure:"sources"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls the full-text fetcher
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	ReaderURL     string        `yaml:"reader_url" mapstructure:"reader_url"` // e.g. https://r.jina.ai/ (empty = direct fetch)
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SearchConfig controls cross-source verification
type SearchConfig struct {
	Providers     []string      `yaml:"providers" mapstructure:"providers"` // fallback order
	APIKey        string        `yaml:"-" mapstructure:"api_key"`
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	GoogleNewsURL string        `yaml:"google_news_url,omitempty" mapstructure:"google_news_url"`
	Language      string        `yaml:"language" mapstructure:"language"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PrimaryLimit  int           `yaml:"primary_limit" mapstructure:"primary_limit"`
	FallbackLimit int           `yaml:"fallback_limit" mapstructure:"fallback_limit"`
	MinSimilarity float64       `yaml:"min_similarity" mapstructure:"min_similarity"`
	MaxMatches    int           `yaml:"max_matches" mapstructure:"max_matches"`
}

// LLMConfig holds AI content scorer configuration
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, gemini, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ContentConfig controls content signal analysis
type ContentConfig struct {
	Cooldown         time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
	ScoreFloor       string        `yaml:"score_floor" mapstructure:"score_floor"` // "none" or "neutral"
	FullTextBudget   int           `yaml:"full_text_budget" mapstructure:"full_text_budget"`
	ExcerptBudget    int           `yaml:"excerpt_budget" mapstructure:"excerpt_budget"`
	FetchFullText    bool          `yaml:"fetch_full_text" mapstructure:"fetch_full_text"`
	MinFullTextChars int           `yaml:"min_full_text_chars" mapstructure:"min_full_text_chars"`
}

// CacheConfig controls the assessment cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	RedisURL  string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
}

// CommunityConfig controls the community signal lookup
type CommunityConfig struct {
	DatabaseURL  string        `yaml:"-" mapstructure:"database_url"`
	DefaultScore int           `yaml:"default_score" mapstructure:"default_score"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SourcesConfig points at an optional replacement reference dataset
type SourcesConfig struct {
	Path string `yaml:"path,omitempty" mapstructure:"path"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-host outbound request rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       25 * time.Second,
			UserAgent:     "trustlens/0.1 (+https://github.com/ppiankov/trustlens)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Search: SearchConfig{
			Providers:     []string{"eventregistry", "googlenews"},
			Language:      "en",
			Timeout:       15 * time.Second,
			PrimaryLimit:  50,
			FallbackLimit: 40,
			MinSimilarity: 0.20,
			MaxMatches:    20,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 80,
		},
		Content: ContentConfig{
			Cooldown:         60 * time.Second,
			ScoreFloor:       "none",
			FullTextBudget:   1200,
			ExcerptBudget:    800,
			FetchFullText:    true,
			MinFullTextChars: 100,
		},
		Cache: CacheConfig{
			Enabled:   true,
			TTL:       24 * time.Hour,
			MemoryTTL: 30 * time.Minute,
			Dir:       defaultCacheDir(),
		},
		Community: CommunityConfig{
			DefaultScore: 50,
			Timeout:      5 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "trustlens")
	}
	return filepath.Join(dir, "trustlens")
}
