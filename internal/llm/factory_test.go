package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ppiankov/trustlens/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
		wantErr  bool
	}{
		{"disabled", Config{}, "", false},
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"claude alias", Config{Provider: "Claude", APIKey: "k"}, "anthropic", false},
		{"gemini", Config{Provider: "gemini", APIKey: "k"}, "gemini", false},
		{"ollama", Config{Provider: "ollama", Model: "mistral"}, "ollama", false},
		{"missing key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "bard"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.expected == "" {
				if p != nil {
					t.Errorf("expected nil provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.expected {
				t.Errorf("expected %s provider, got %v", tt.expected, p)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "gemini", Model: "m", APIKey: "k", Timeout: 12, MaxTokens: 64},
		model.HTTPConfig{HTTPProxy: "http://p:1", NoProxy: "localhost"},
	)
	if cfg.Provider != "gemini" || cfg.Timeout != 12 || cfg.MaxTokens != 64 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPProxy != "http://p:1" || cfg.NoProxy != "localhost" {
		t.Errorf("expected proxy settings to carry over: %+v", cfg)
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		err      error
		expected bool
	}{
		{nil, false},
		{ErrQuotaExceeded, true},
		{fmt.Errorf("wrapped: %w", ErrQuotaExceeded), true},
		{errors.New("googleapi: RESOURCE_EXHAUSTED"), true},
		{errors.New("Quota Exceeded for project"), true},
		{errors.New("hit the rate limit"), true},
		{errors.New("connection refused"), false},
		{ErrMalformedResponse, false},
	}

	for _, tt := range tests {
		if got := IsQuotaError(tt.err); got != tt.expected {
			t.Errorf("IsQuotaError(%v) = %v, expected %v", tt.err, got, tt.expected)
		}
	}
}
