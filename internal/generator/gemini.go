package generator

import (
	"context"
	"fmt"

	"dadjoke/internal/config"
	"dadjoke/internal/models"

	"google.golang.org/genai"
)

// GeminiGenerator sends the same fixed prompt through the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	g := &GeminiGenerator{
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
	}
	// Without a key every call fails and callers serve the fallback joke.
	if cfg.APIKey == "" {
		return g, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	g.client = client
	return g, nil
}

func (g *GeminiGenerator) Source() models.JokeSource {
	return models.SourceGemini
}

func (g *GeminiGenerator) Generate(ctx context.Context) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(UserPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	joke := Clean(resp.Text())
	if joke == "" {
		return "", ErrEmptyJoke
	}

	return joke, nil
}
