package models

import "time"

// Joke is a persisted row of the jokes table.
type Joke struct {
	ID        int64     `json:"id"`
	Text      string    `json:"joke_text"`
	CreatedAt time.Time `json:"created_at"`
}

type JokeSource string

const (
	SourcePool     JokeSource = "pool"
	SourceOpenAI   JokeSource = "openai"
	SourceGemini   JokeSource = "gemini"
	SourceFallback JokeSource = "fallback"
)
