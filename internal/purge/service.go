package purge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"appdepot/internal/config"
)

const userAgent = "AppDepot/0.1.0"

// CatalogPatterns covers every cached view invalidated by a catalog change:
// product listings, search suggestions, and aggregate stats.
var CatalogPatterns = []string{
	"products_list:*",
	"products_recent:*",
	"products_by_category:*",
	"search_suggestions:*",
	"stats_overview:*",
	"stats_categories:*",
}

// Service defines the cache invalidation surface exposed to the matcher and
// review flow.
type Service interface {
	Purge(ctx context.Context, patterns []string) error
}

// NewService builds a purge service backed by the configured HTTP endpoint.
// When no endpoint is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Matcher.PurgeURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Matcher.PurgeTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &httpService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	endpoint string
	client   *http.Client
}

type purgeRequest struct {
	Patterns []string `json:"patterns"`
}

func (s *httpService) Purge(ctx context.Context, patterns []string) error {
	if s == nil || s.client == nil || len(patterns) == 0 {
		return nil
	}

	body, err := json.Marshal(purgeRequest{Patterns: patterns})
	if err != nil {
		return fmt.Errorf("encode purge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build purge request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send purge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("purge endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Purge(context.Context, []string) error { return nil }
