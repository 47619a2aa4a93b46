package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dadjoke/internal/config"
	"dadjoke/internal/models"
)

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint once
// per joke.
type OpenAIGenerator struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

type OpenAIOption func(*OpenAIGenerator)

func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(g *OpenAIGenerator) {
		g.client = client
	}
}

func NewOpenAIGenerator(cfg config.OpenAIConfig, opts ...OpenAIOption) *OpenAIGenerator {
	g := &OpenAIGenerator{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		// Zero timeout leaves the call bounded only by the request context.
		client: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *OpenAIGenerator) Source() models.JokeSource {
	return models.SourceOpenAI
}

func (g *OpenAIGenerator) Generate(ctx context.Context) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	payload, err := json.Marshal(openAIRequest{
		Model:       g.model,
		Messages:    Messages(),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp openAIResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned: %w", ErrEmptyJoke)
	}

	content := chatResp.Choices[0].Message.Content
	if content == nil {
		return "", ErrEmptyJoke
	}

	joke := Clean(*content)
	if joke == "" {
		return "", ErrEmptyJoke
	}

	return joke, nil
}
