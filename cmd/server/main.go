package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dadjoke/internal/bot"
	"dadjoke/internal/config"
	"dadjoke/internal/database"
	"dadjoke/internal/generator"
	"dadjoke/internal/queue"
	"dadjoke/internal/server"
	"dadjoke/internal/service"
	"dadjoke/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrEmptyBotToken) {
			fmt.Fprintln(os.Stderr, "Error: BOT_TOKEN environment variable is required when BOT_ENABLED=true")
		} else if errors.Is(err, config.ErrUnknownMode) {
			fmt.Fprintln(os.Stderr, "Error: JOKE_MODE must be one of pool, openai, gemini")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		}
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel, nil)
	logger.Info("Starting dadjoke",
		logger.String("app", cfg.App.Name),
		logger.String("environment", cfg.App.Environment),
		logger.String("mode", cfg.Joke.Mode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, err := generator.FromConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to create joke generator", logger.Err(err))
		os.Exit(1)
	}
	if cfg.Joke.Mode != config.ModePool && cfg.APIKey() == "" {
		logger.Warn("No API key configured, every joke will be the fallback",
			logger.String("mode", cfg.Joke.Mode),
		)
	}

	var opts []service.Option

	if cfg.Database.Active() {
		if err := database.Migrate(ctx, cfg.Database.ConnectionString()); err != nil {
			logger.Error("Failed to run migrations", logger.Err(err))
			os.Exit(1)
		}
		logger.Info("Migrations applied")

		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			var dbErr *database.ConnectionError
			if errors.As(err, &dbErr) {
				logger.Error("Failed to connect to database",
					logger.Err(dbErr),
					logger.String("host", dbErr.Host),
					logger.Int("port", dbErr.Port),
				)
			} else {
				logger.Error("Failed to connect to database", logger.Err(err))
			}
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("Connected to database")

		opts = append(opts, service.WithStore(database.NewJokeRepository(db)))
	} else {
		logger.Info("DATABASE_URL not set, jokes will not be stored")
	}

	var q *queue.NATS
	if cfg.NATS.Enabled {
		q, err = queue.New(cfg.NATS)
		if err != nil {
			logger.Error("Failed to connect to NATS", logger.Err(err))
			os.Exit(1)
		}
		defer q.Close()
		logger.Info("Connected to NATS", logger.String("url", cfg.NATS.URL))

		opts = append(opts, service.WithPublisher(q))
	}

	svc := service.New(gen, opts...)

	var stopBot func()
	if cfg.Bot.Enabled {
		var outbox bot.Outbox
		if q != nil {
			outbox = q
		}

		telegramBot, err := bot.New(cfg.Bot, svc, outbox)
		if err != nil {
			logger.Error("Failed to create bot", logger.Err(err))
			os.Exit(1)
		}

		tbot, err := telegramBot.Start(ctx)
		if err != nil {
			logger.Error("Failed to start bot", logger.Err(err))
			os.Exit(1)
		}
		stopBot = tbot.Stop
		logger.Info("Telegram bot started")
	}

	srv := server.New(cfg.HTTP, svc)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("HTTP server error", logger.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if stopBot != nil {
		stopBot()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", logger.Err(err))
	}

	logger.Info("Server stopped gracefully")
}
