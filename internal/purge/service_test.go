package purge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"appdepot/internal/config"
	"appdepot/internal/purge"
)

func TestNewServiceReturnsNoopWhenEndpointMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Matcher.PurgeURL = ""
	svc := purge.NewService(&cfg)
	if err := svc.Purge(context.Background(), purge.CatalogPatterns); err != nil {
		t.Fatalf("expected noop purge to return nil, got %v", err)
	}
}

func TestHTTPServicePostsPatterns(t *testing.T) {
	var captured struct {
		Patterns []string `json:"patterns"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Matcher.PurgeURL = server.URL

	svc := purge.NewService(&cfg)
	if err := svc.Purge(context.Background(), purge.CatalogPatterns); err != nil {
		t.Fatalf("purge returned error: %v", err)
	}
	if !reflect.DeepEqual(captured.Patterns, purge.CatalogPatterns) {
		t.Fatalf("expected patterns %v, got %v", purge.CatalogPatterns, captured.Patterns)
	}
}

func TestHTTPServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cache backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Matcher.PurgeURL = server.URL

	svc := purge.NewService(&cfg)
	if err := svc.Purge(context.Background(), []string{"products_list:*"}); err == nil {
		t.Fatal("expected error from failing endpoint")
	}
}

func TestHTTPServiceSkipsEmptyPatternList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for empty pattern list: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Matcher.PurgeURL = server.URL

	svc := purge.NewService(&cfg)
	if err := svc.Purge(context.Background(), nil); err != nil {
		t.Fatalf("expected nil for empty pattern list, got %v", err)
	}
}
