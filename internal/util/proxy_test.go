package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc(ProxySettings{
		HTTPProxy:  "http://proxy.internal:3128",
		HTTPSProxy: "http://secure-proxy.internal:3128",
		NoProxy:    "localhost,.corp.example",
	})

	tests := []struct {
		target   string
		expected string
	}{
		{"http://example.com/a", "http://proxy.internal:3128"},
		{"https://example.com/a", "http://secure-proxy.internal:3128"},
		{"https://wiki.corp.example/page", ""},
		{"http://localhost:8080/", ""},
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, tt.target, nil)
		got, err := proxy(req)
		if err != nil {
			t.Fatalf("proxy(%s): %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.expected {
			t.Errorf("proxy(%s) = %q, expected %q", tt.target, gotStr, tt.expected)
		}
	}
}

func TestNewProxyFunc_HTTPSFallsBackToHTTPProxy(t *testing.T) {
	proxy := NewProxyFunc(ProxySettings{HTTPProxy: "http://proxy.internal:3128"})

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Host != "proxy.internal:3128" {
		t.Errorf("expected https traffic to use the http proxy, got %v", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(5*time.Second, ProxySettings{})
	if client.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", client.Timeout)
	}
	if _, ok := client.Transport.(*http.Transport); !ok {
		t.Errorf("expected *http.Transport, got %T", client.Transport)
	}
}
