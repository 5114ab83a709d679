package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"TrackMatch/0.1 (+https://example.com)": "TrackMatch",
		"curl/8.0":                              "curl",
		"bot":                                   "bot",
		"":                                      "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	var robotsHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits.Add(1)
			_, _ = fmt.Fprint(w, "User-agent: TrackMatch\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("TrackMatch/0.1 (+https://example.com)", server.Client())
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/watch?v=abc")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /watch to be allowed for TrackMatch")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/page")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if allowed {
		t.Error("expected /private to be disallowed")
	}

	if robotsHits.Load() != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", robotsHits.Load())
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := NewRobotsChecker("TrackMatch/0.1", server.Client())
	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed || delay != 0 {
		t.Errorf("expected allowed with no delay, got %v %v", allowed, delay)
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	checker := NewRobotsChecker("TrackMatch/0.1", &http.Client{Timeout: time.Second})
	allowed, _, err := checker.CanFetch(context.Background(), url+"/x")
	if err != nil {
		t.Fatalf("expected no error for unreachable robots.txt, got %v", err)
	}
	if !allowed {
		t.Error("expected unreachable robots.txt to allow")
	}
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker("TrackMatch/0.1", nil)
	if _, _, err := checker.CanFetch(context.Background(), "no-host"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure.local:3129", "internal.example")

	req, _ := http.NewRequest(http.MethodGet, "https://api.spotify.com/v1/search", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if u == nil || u.Host != "secure.local:3129" {
		t.Errorf("expected https proxy, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://example.com/", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("expected http proxy, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://internal.example/", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected no proxy for excluded host, got %v", u)
	}
}
