package datasource

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
)

// HTTPConfig configures the remote fixture source.
type HTTPConfig struct {
	BaseURL    string
	Path       string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPSource fetches fixture documents (YAML or JSON) from a remote endpoint.
type HTTPSource struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPSource builds a source that downloads fixtures on every load.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("datasource: base url is required")
	}
	path := cfg.Path
	if path == "" {
		path = "/fixtures"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		url:    strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		apiKey: cfg.APIKey,
		client: httpClient,
	}, nil
}

// Fixtures implements dashboard.FixtureSource.
func (s *HTTPSource) Fixtures(ctx context.Context) (*dashboard.FixtureDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("datasource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datasource: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("datasource: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	doc, err := dashboard.DecodeFixtures(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("datasource: decode response: %w", err)
	}
	doc.Source = s.url
	return doc, nil
}
