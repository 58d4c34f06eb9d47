// Package oracle provides the HTTP client for the external scoring model
// server.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/induction/auth"
	coreoracle "github.com/kilianp07/induction/core/oracle"
)

// Config defines the connection parameters for the model server.
type Config struct {
	// URL is the scoring endpoint, e.g. http://model:8500/score.
	URL string `json:"url"`
	// APIKey is sent as a bearer token when non-empty. Ignored when OAuth
	// is configured.
	APIKey string `json:"api_key"`
	// OAuth enables client credential authentication against the model
	// server's identity provider.
	OAuth auth.Conf `json:"oauth"`
	// TimeoutSeconds bounds one scoring request.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("oracle url is required")
	}
	return nil
}

// Client calls the model server over HTTP. It implements
// coreoracle.ScoringOracle.
type Client struct {
	url    string
	apiKey string
	cred   *auth.ClientCred
	client *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	c := &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
	if cfg.OAuth.Enabled() {
		c.cred = auth.NewClientCred(cfg.OAuth)
	}
	return c
}

type scoreRequest struct {
	Encoding string                     `json:"encoding"`
	Features []coreoracle.FeatureVector `json:"features"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

// Score posts the feature matrix and returns one score per vector. A non-200
// status, an undecodable body or a mismatched batch length all fail the call;
// the caller treats any error here as fatal for the ranking pass.
func (c *Client) Score(ctx context.Context, batch []coreoracle.FeatureVector) ([]float64, error) {
	body, err := json.Marshal(scoreRequest{Encoding: coreoracle.EncodingVersion, Features: batch})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.cred != nil:
		if err := c.cred.SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("oauth token: %w", err)
		}
	case c.apiKey != "":
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, b)
	}
	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Scores) != len(batch) {
		return nil, fmt.Errorf("model returned %d scores for %d records", len(out.Scores), len(batch))
	}
	return out.Scores, nil
}
