package util

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// ProxySettings are explicit proxy overrides; empty fields fall back to the
// HTTP_PROXY, HTTPS_PROXY and NO_PROXY environment variables
type ProxySettings struct {
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewProxyFunc creates a proxy function honouring NO_PROXY-style exclusions
func NewProxyFunc(s ProxySettings) func(*http.Request) (*url.URL, error) {
	if s.HTTPProxy == "" && s.HTTPSProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.FromEnvironment()
	cfg.HTTPProxy = s.HTTPProxy
	cfg.HTTPSProxy = s.HTTPSProxy
	if s.NoProxy != "" {
		cfg.NoProxy = s.NoProxy
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = s.HTTPProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}

// NewHTTPClient builds a client with the given timeout and proxy settings
func NewHTTPClient(timeout time.Duration, s ProxySettings) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(s)

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
