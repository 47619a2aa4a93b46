package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dadjoke/internal/config"
	"dadjoke/internal/models"
	"dadjoke/pkg/logger"

	"github.com/nats-io/nats.go"
)

const (
	JokeSubject     = "jokes.generated"
	TelegramSubject = "telegram.send"
	ConsumerGroup   = "dadjoke"
)

type NATS struct {
	conn      *nats.Conn
	jetstream nats.JetStreamContext
	cfg       config.NATSConfig
}

func New(cfg config.NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name(ConsumerGroup))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to get JetStream: %w", err)
	}

	n := &NATS{
		conn:      conn,
		jetstream: js,
		cfg:       cfg,
	}

	if err := n.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}

	return n, nil
}

func (n *NATS) ensureStream() error {
	_, err := n.jetstream.StreamInfo(n.cfg.StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", n.cfg.StreamName, err)
	}

	_, err = n.jetstream.AddStream(&nats.StreamConfig{
		Name:     n.cfg.StreamName,
		Subjects: []string{JokeSubject, TelegramSubject},
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", n.cfg.StreamName, err)
	}

	logger.Info("Created NATS stream", logger.String("stream", n.cfg.StreamName))
	return nil
}

func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}

// JokeEvent announces a joke handed out by the service.
type JokeEvent struct {
	Joke      string            `json:"joke"`
	ID        *int64            `json:"id,omitempty"`
	Source    models.JokeSource `json:"source"`
	CreatedAt time.Time         `json:"created_at"`
}

func (n *NATS) PublishJoke(ctx context.Context, event *JokeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal joke event: %w", err)
	}

	_, err = n.jetstream.Publish(JokeSubject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish joke event: %w", err)
	}

	logger.Debug("Joke event published",
		logger.String("source", string(event.Source)),
	)

	return nil
}

type TelegramMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (n *NATS) PublishTelegramMessage(ctx context.Context, msg *TelegramMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram message: %w", err)
	}

	_, err = n.jetstream.Publish(TelegramSubject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish telegram message: %w", err)
	}

	logger.Debug("Telegram message published to queue",
		logger.Int64("chat_id", msg.ChatID),
	)

	return nil
}

func (n *NATS) ConsumeTelegramMessages(ctx context.Context, handler func(*TelegramMessage) error) error {
	sub, err := n.jetstream.PullSubscribe(
		TelegramSubject,
		ConsumerGroup,
		nats.BindStream(n.cfg.StreamName),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to telegram: %w", err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			msgs, err := sub.Fetch(10, nats.MaxWait(500*time.Millisecond))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				return fmt.Errorf("failed to fetch messages: %w", err)
			}

			for _, msg := range msgs {
				if err := handleMessage(msg.Data, handler); err != nil {
					logger.Error("Failed to deliver telegram message", logger.Err(err))
					msg.Nak()
					continue
				}
				msg.Ack()
			}
		}
	}
}

func handleMessage(data []byte, handler func(*TelegramMessage) error) error {
	var m TelegramMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to unmarshal telegram message: %w", err)
	}
	return handler(&m)
}
