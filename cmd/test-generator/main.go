package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"dadjoke/internal/config"
	"dadjoke/internal/generator"
	"dadjoke/internal/service"
	"dadjoke/pkg/logger"
)

func main() {
	count := flag.Int("n", 3, "number of jokes to request")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("debug", nil)

	fmt.Printf("=== Testing %s generator ===\n\n", cfg.Joke.Mode)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gen, err := generator.FromConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to create generator", logger.Err(err))
		os.Exit(1)
	}

	svc := service.New(gen)

	fallbacks := 0
	for i := 0; i < *count; i++ {
		res := svc.Joke(ctx)
		mark := "✓"
		if res.Fallback {
			mark = "✗"
			fallbacks++
		}
		fmt.Printf("%s %d [%s] %s\n", mark, i+1, res.Source, res.Text)
	}

	fmt.Println()
	fmt.Println("=== Test Complete ===")

	if fallbacks == *count {
		os.Exit(1)
	}
}
