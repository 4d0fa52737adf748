// Package gemini is a playlist generation backend backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned by NewClient when no credential is configured.
var ErrNoAPIKey = errors.New("API key is not configured for Gemini service")

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string // overrides the API endpoint; empty means the public API
}

// Client asks Gemini for a JSON array of catalog ids.
type Client struct {
	genai *genai.Client
	model string
	log   *zap.Logger
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, opts Options, log *zap.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{genai: gc, model: opts.Model, log: log}, nil
}

// idListSchema constrains the response to an array of strings.
var idListSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type:        genai.TypeString,
		Description: "The ID of a song from the provided list.",
	},
}

// Generate sends prompt with a system instruction and returns the JSON text.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   idListSchema,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	c.log.Debug("gemini response", zap.String("model", c.model), zap.Int("bytes", len(text)))
	return text, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
