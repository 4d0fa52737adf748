// Package ollama is a playlist generation backend backed by a local Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client asks a local Ollama server to pick playlist tracks.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
	pollEvery  time.Duration
}

// NewClient creates an Ollama client.
func NewClient(baseURL, model string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // cold start includes loading the model
		},
		log:       log,
		pollEvery: 3 * time.Second,
	}
}

// generateRequest is the body of POST /api/generate.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse is the non-streaming reply of /api/generate.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Available reports whether GET /api/tags answers 200.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Generate runs one non-streaming completion. With format "json" Ollama
// only emits valid JSON, which leaves the curator to check its shape.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
		Format: "json",
		Stream: false,
		Options: map[string]any{
			"temperature":    0.7,
			"top_p":          0.9,
			"num_predict":    256, // room for eight quoted ids
			"repeat_penalty": 1.1,
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	c.log.Debug("ollama response", zap.String("model", c.model), zap.Int("bytes", len(result.Response)))
	return strings.TrimSpace(result.Response), nil
}

// Model is the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// WaitForReady checks once, then keeps polling until the server answers or
// ctx ends. A false result just means no local backend.
func (c *Client) WaitForReady(ctx context.Context) bool {
	if c.Available(ctx) {
		c.log.Info("ollama ready", zap.String("model", c.model))
		return true
	}

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if c.Available(ctx) {
				c.log.Info("ollama ready", zap.String("model", c.model))
				return true
			}
		}
	}
}
