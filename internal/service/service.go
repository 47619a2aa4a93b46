package service

import (
	"context"
	"errors"
	"time"

	"dadjoke/internal/database"
	"dadjoke/internal/generator"
	"dadjoke/internal/metrics"
	"dadjoke/internal/models"
	"dadjoke/internal/queue"
	"dadjoke/pkg/logger"
)

// FallbackJoke is served whenever the generator fails.
const FallbackJoke = "Why did the API call fail? Because it couldn't handle the dad joke pressure!"

// RecentLimit is how many stored jokes Recent returns.
const RecentLimit = database.MaxRecent

var ErrPersistenceDisabled = errors.New("joke persistence is disabled")

type Store interface {
	Insert(ctx context.Context, text string) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]models.Joke, error)
}

type Publisher interface {
	PublishJoke(ctx context.Context, event *queue.JokeEvent) error
}

type Result struct {
	Text     string
	ID       *int64
	Source   models.JokeSource
	Fallback bool
}

type Service struct {
	gen    generator.JokeGenerator
	store  Store
	events Publisher
	now    func() time.Time
}

type Option func(*Service)

// WithStore enables persistence of generated jokes.
func WithStore(store Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithPublisher announces every served joke.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func New(gen generator.JokeGenerator, opts ...Option) *Service {
	s := &Service{
		gen: gen,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Persistent reports whether jokes are stored and can be listed.
func (s *Service) Persistent() bool {
	return s.store != nil
}

// Joke always yields a joke. Generator errors are replaced by FallbackJoke;
// storage and publish errors are logged and otherwise ignored.
func (s *Service) Joke(ctx context.Context) Result {
	source := s.gen.Source()

	start := s.now()
	text, err := s.gen.Generate(ctx)
	elapsed := s.now().Sub(start).Seconds()

	if err != nil {
		metrics.RecordGeneration(string(source), "error", elapsed)
		metrics.RecordJoke(string(models.SourceFallback))
		logger.Warn("Joke generation failed, serving fallback",
			logger.String("source", string(source)),
			logger.Err(err),
		)
		return Result{Text: FallbackJoke, Source: models.SourceFallback, Fallback: true}
	}

	metrics.RecordGeneration(string(source), "ok", elapsed)
	metrics.RecordJoke(string(source))

	res := Result{Text: text, Source: source}

	if s.store != nil {
		id, err := s.store.Insert(ctx, text)
		if err != nil {
			logger.Error("Failed to save joke, returning it unsaved",
				logger.String("source", string(source)),
				logger.Err(err),
			)
		} else {
			res.ID = &id
			logger.Debug("Joke saved to database", logger.Int64("id", id))
		}
	}

	s.publish(ctx, res)

	return res
}

func (s *Service) publish(ctx context.Context, res Result) {
	if s.events == nil {
		return
	}

	event := &queue.JokeEvent{
		Joke:      res.Text,
		ID:        res.ID,
		Source:    res.Source,
		CreatedAt: s.now().UTC(),
	}
	if err := s.events.PublishJoke(ctx, event); err != nil {
		metrics.RecordEvent("error")
		logger.Error("Failed to publish joke event", logger.Err(err))
		return
	}
	metrics.RecordEvent("ok")
}

// Recent lists the newest stored jokes.
func (s *Service) Recent(ctx context.Context) ([]models.Joke, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.store.ListRecent(ctx, RecentLimit)
}
