package generator

import (
	"context"
	"fmt"

	"dadjoke/internal/config"
	"dadjoke/internal/pool"
	"dadjoke/pkg/logger"
)

// FromConfig builds the generator selected by cfg.Joke.Mode.
func FromConfig(ctx context.Context, cfg *config.Config) (JokeGenerator, error) {
	switch cfg.Joke.Mode {
	case config.ModePool:
		jokes := pool.DefaultJokes
		if cfg.Joke.File != "" {
			loaded, err := pool.LoadFile(cfg.Joke.File)
			if err != nil {
				return nil, err
			}
			jokes = loaded
		}

		p, err := pool.New(jokes)
		if err != nil {
			return nil, err
		}
		logger.Info("Joke pool ready", logger.Int("jokes", p.Len()))
		return NewPoolGenerator(p), nil

	case config.ModeOpenAI:
		return NewOpenAIGenerator(cfg.OpenAI), nil

	case config.ModeGemini:
		return NewGeminiGenerator(ctx, cfg.Gemini)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownMode, cfg.Joke.Mode)
	}
}
