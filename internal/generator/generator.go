// Package generator produces a single joke per call. Implementations return
// errors instead of substituting text; the fallback policy belongs to callers.
package generator

import (
	"context"
	"errors"

	"dadjoke/internal/models"
	"dadjoke/internal/pool"
)

var (
	ErrEmptyJoke     = errors.New("generator returned no joke text")
	ErrMissingAPIKey = errors.New("API key not configured")
)

type JokeGenerator interface {
	Generate(ctx context.Context) (string, error)
	Source() models.JokeSource
}

const (
	SystemPrompt = "You are a dad joke generator. Generate a short, family-friendly dad joke. " +
		"Respond with ONLY the joke text, no additional commentary or formatting. " +
		"The joke should be no more than 2 sentences long. " +
		"Avoid the most common, overused dad jokes."
	UserPrompt = "Generate a dad joke"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Messages returns the fixed system/user prompt pair.
func Messages() []Message {
	return []Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: UserPrompt},
	}
}

type PoolGenerator struct {
	pool *pool.Pool
}

func NewPoolGenerator(p *pool.Pool) *PoolGenerator {
	return &PoolGenerator{pool: p}
}

func (g *PoolGenerator) Generate(context.Context) (string, error) {
	return g.pool.Draw(), nil
}

func (g *PoolGenerator) Source() models.JokeSource {
	return models.SourcePool
}
