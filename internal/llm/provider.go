package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/trustlens/internal/util"
)

var (
	// ErrQuotaExceeded marks provider responses that signal quota or rate exhaustion
	ErrQuotaExceeded = errors.New("llm quota exceeded")

	// ErrMalformedResponse marks responses without usable text
	ErrMalformedResponse = errors.New("llm malformed response")
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one prompt and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains the input for one completion
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 80,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 80
}

func (c Config) httpClient() *http.Client {
	return util.NewHTTPClient(c.timeout(), util.ProxySettings{
		HTTPProxy:  c.HTTPProxy,
		HTTPSProxy: c.HTTPSProxy,
		NoProxy:    c.NoProxy,
	})
}

var quotaMarkers = []string{"resource_exhausted", "quota exceeded", "rate limit"}

// IsQuotaError reports whether err signals quota or rate-limit exhaustion
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	return isQuotaMessage(err.Error())
}

func isQuotaMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// statusError builds the error for a non-2xx provider response
func statusError(provider string, status int, detail string) error {
	if status == http.StatusTooManyRequests || isQuotaMessage(detail) {
		return fmt.Errorf("%s API error (%d): %w: %s", provider, status, ErrQuotaExceeded, detail)
	}
	return fmt.Errorf("%s API error (%d): %s", provider, status, detail)
}
