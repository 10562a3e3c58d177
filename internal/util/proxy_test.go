package util

import (
	"net/http"
	"testing"
)

func TestNoProxy(t *testing.T) {
	bypass := parseNoProxy("localhost, .internal,example.com")
	cases := map[string]bool{
		"localhost":       true,
		"localhost:8080":  true,
		"api.internal":    true,
		"internal":        true,
		"www.example.com": true,
		"example.org":     false,
		"notexample.com":  false,
	}
	for host, want := range cases {
		if got := bypass(host); got != want {
			t.Errorf("bypass(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost")

	req, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/chat", nil)
	u, err := proxy(req)
	if err != nil || u == nil || u.Host != "secure-proxy:3128" {
		t.Errorf("Expected the HTTPS proxy, got %v (%v)", u, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://example.com/", nil)
	if u, _ := proxy(req); u == nil || u.Host != "proxy:3128" {
		t.Errorf("Expected the HTTP proxy, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://localhost:11434/api/generate", nil)
	if u, _ := proxy(req); u != nil {
		t.Errorf("Expected localhost to bypass the proxy, got %v", u)
	}
}
