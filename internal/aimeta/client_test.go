package aimeta

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appdepot/internal/config"
	"appdepot/internal/parse"
)

func testConfig(baseURL string) config.AI {
	return config.AI{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
	}
}

func chatResponse(content string) []byte {
	body := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	return data
}

func TestClassifyClarityWithoutKeyIsClear(t *testing.T) {
	client := NewClient(config.AI{Enabled: true})
	clarity, err := client.ClassifyClarity(context.Background(), "setup.exe", "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if clarity != ClarityClear {
		t.Fatalf("clarity = %q, want CLEAR without api key", clarity)
	}
}

func TestClassifyClarityUnclear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatResponse("UNCLEAR"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	clarity, err := client.ClassifyClarity(context.Background(), "setup.exe", "MS Office 2021")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if clarity != ClarityUnclear {
		t.Fatalf("clarity = %q, want UNCLEAR", clarity)
	}
}

func TestSynthesizeDecodesFencedJSON(t *testing.T) {
	payload := "```json\n{\"title\":\"Total Commander\",\"developer\":\"Ghisler\",\"category\":\"Utility\",\"description_short\":\"File manager\"}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatResponse(payload))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	meta, err := client.Synthesize(context.Background(), "Total Commander")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if meta.Title != "Total Commander" || meta.Developer != "Ghisler" {
		t.Fatalf("metadata = %+v", meta)
	}
}

func TestSynthesizeWithoutKey(t *testing.T) {
	client := NewClient(config.AI{Enabled: true})
	if _, err := client.Synthesize(context.Background(), "GIMP"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestSynthesizeRetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(chatResponse(`{"title":"GIMP"}`))
	}))
	defer server.Close()

	var slept time.Duration
	client := NewClient(testConfig(server.URL), WithSleeper(func(d time.Duration) { slept += d }))
	meta, err := client.Synthesize(context.Background(), "GIMP")
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if meta.Title != "GIMP" {
		t.Fatalf("title = %q", meta.Title)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if slept != time.Second {
		t.Fatalf("slept = %s, want 1s from Retry-After", slept)
	}
}

func TestSynthesizeGivesUpOnBadRequest(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	if _, err := client.Synthesize(context.Background(), "GIMP"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want no retry on 400", calls)
	}
}

func TestFallbackMetadata(t *testing.T) {
	parsed := parse.Parsed{SoftwareName: "Adobe Photoshop CC", Version: "24.0.1", Vendor: "Adobe"}
	meta := Fallback(parsed)
	if meta.Title != "Adobe Photoshop CC" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.Developer != "Adobe" || meta.Version != "24.0.1" {
		t.Fatalf("metadata = %+v", meta)
	}
	if meta.Category != "Utility" || meta.Platform != "Windows" {
		t.Fatalf("defaults = %+v", meta)
	}
	if meta.DescriptionShort != "Adobe Photoshop CC software" {
		t.Fatalf("description = %q", meta.DescriptionShort)
	}
}

func TestDecodeProviderJSONExtractsEmbeddedObject(t *testing.T) {
	var meta Metadata
	err := DecodeProviderJSON(`Here is the data: {"title":"VLC"} hope it helps`, &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Title != "VLC" {
		t.Fatalf("title = %q", meta.Title)
	}
}
