// Package curator turns a free-text request into a playlist by asking a
// generation backend to pick catalog ids.
package curator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/catalog"
)

var (
	// ErrUnavailable means no backend is configured or the backend call failed.
	ErrUnavailable = errors.New("generation unavailable")
	// ErrMalformedResponse means the backend answered with something other
	// than a JSON array of strings.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrEmptyPrompt is returned for a blank request.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// Generator is a text generation backend.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Curator builds AI playlists. A nil Generator makes every call fail with
// ErrUnavailable.
type Curator struct {
	gen     Generator
	timeout time.Duration
	log     *zap.Logger
}

// New creates a curator. A zero timeout means no deadline beyond ctx.
func New(gen Generator, timeout time.Duration, log *zap.Logger) *Curator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Curator{gen: gen, timeout: timeout, log: log}
}

// Available reports whether a backend is configured.
func (c *Curator) Available() bool {
	return c.gen != nil
}

// Generate asks the backend for a playlist matching prompt, drawn from tracks.
// The returned ids are kept verbatim; ids missing from the catalog are dropped
// later, when the playlist is resolved.
func (c *Curator) Generate(ctx context.Context, prompt string, tracks []catalog.Track) (catalog.Playlist, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return catalog.Playlist{}, ErrEmptyPrompt
	}
	if c.gen == nil {
		return catalog.Playlist{}, fmt.Errorf("%w: no backend configured", ErrUnavailable)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.gen.Generate(ctx, systemPrompt, userPrompt(prompt, tracks))
	if err != nil {
		c.log.Warn("playlist generation failed", zap.String("prompt", prompt), zap.Error(err))
		return catalog.Playlist{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ids, err := parseIDs(raw)
	if err != nil {
		c.log.Warn("unusable generation response", zap.String("raw", raw), zap.Error(err))
		return catalog.Playlist{}, err
	}

	id := uuid.NewString()
	p := catalog.Playlist{
		ID:          "ai-" + id,
		Name:        "AI: " + prompt,
		Description: "Generated from your prompt.",
		Artwork:     fmt.Sprintf("https://picsum.photos/seed/ai%s/500/500", id),
		SongIDs:     ids,
	}
	c.log.Info("playlist generated",
		zap.String("id", p.ID),
		zap.Int("songs", len(ids)),
		zap.Duration("took", time.Since(start)))
	return p, nil
}

// parseIDs accepts only a JSON array whose every element is a string.
func parseIDs(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if ids == nil {
		return nil, fmt.Errorf("%w: null", ErrMalformedResponse)
	}
	return ids, nil
}

// Message renders a generation error for display.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyPrompt):
		return "Describe the playlist you want first."
	case errors.Is(err, ErrUnavailable):
		return "AI playlists are unavailable right now."
	default:
		return "Failed to create AI playlist. Please try again."
	}
}
