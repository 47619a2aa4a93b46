package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dadjoke/internal/config"
	"dadjoke/internal/models"
	"dadjoke/internal/queue"
	"dadjoke/internal/service"
	"dadjoke/pkg/logger"

	"gopkg.in/telebot.v4"
)

var (
	ErrRateLimited = errors.New("telegram rate limited")
	ErrEmptyToken  = errors.New("telegram bot token is required")
)

const maxRetries = 3

type JokeService interface {
	Joke(ctx context.Context) service.Result
	Recent(ctx context.Context) ([]models.Joke, error)
	Persistent() bool
}

// Outbox queues chat messages instead of sending them inline.
type Outbox interface {
	PublishTelegramMessage(ctx context.Context, msg *queue.TelegramMessage) error
	ConsumeTelegramMessages(ctx context.Context, handler func(*queue.TelegramMessage) error) error
}

type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

type Bot struct {
	settings   telebot.Settings
	svc        JokeService
	outbox     Outbox
	send       sender
	cfg        config.BotConfig
	retryDelay time.Duration
}

// New builds a bot. outbox may be nil, in which case replies are sent inline.
func New(cfg config.BotConfig, svc JokeService, outbox Outbox) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrEmptyToken
	}

	return &Bot{
		cfg:        cfg,
		svc:        svc,
		outbox:     outbox,
		retryDelay: time.Second,
		settings: telebot.Settings{
			Token:  cfg.Token,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		},
	}, nil
}

func (b *Bot) Start(ctx context.Context) (*telebot.Bot, error) {
	tbot, err := telebot.NewBot(b.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.send = tbot
	b.setupHandlers(tbot)

	b.startTelegramConsumer(ctx)

	go tbot.Start()

	return tbot, nil
}

func (b *Bot) setupHandlers(bot *telebot.Bot) {
	bot.Handle(telebot.OnText, func(c telebot.Context) error {
		logger.Info("Incoming text message",
			logger.Int64("user_id", c.Sender().ID),
			logger.String("username", c.Sender().Username),
		)
		return b.queueOrSend(c.Sender().ID, "Use /joke to get a dad joke!")
	})

	bot.Handle("/start", b.handleStart)
	bot.Handle("/joke", b.handleJoke)
	bot.Handle("/recent", b.handleRecent)
	bot.Handle("/help", b.handleHelp)
}

func (b *Bot) startTelegramConsumer(ctx context.Context) {
	if b.outbox == nil {
		return
	}

	go func() {
		err := b.outbox.ConsumeTelegramMessages(ctx, func(msg *queue.TelegramMessage) error {
			return b.sendMessageWithRetry(msg.ChatID, msg.Text)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Telegram consumer error", logger.Err(err))
		}
	}()
}

func (b *Bot) sendOptions() *telebot.SendOptions {
	return &telebot.SendOptions{ParseMode: telebot.ParseMode(b.cfg.ParseMode)}
}

func (b *Bot) sendMessageWithRetry(chatID int64, text string) error {
	delay := b.retryDelay

	for i := 0; i < maxRetries; i++ {
		_, err := b.send.Send(&telebot.Chat{ID: chatID}, text, b.sendOptions())
		if err == nil {
			return nil
		}

		if !isRateLimit(err) {
			return fmt.Errorf("failed to send message: %w", err)
		}

		logger.Warn("Rate limited, retrying...",
			logger.Int("retry", i+1),
			logger.Int("max_retries", maxRetries),
		)
		time.Sleep(delay)
		delay *= 2
	}

	return ErrRateLimited
}

func isRateLimit(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Too Many Requests") || strings.Contains(msg, "retry after")
}

func (b *Bot) queueOrSend(chatID int64, text string) error {
	if b.outbox != nil {
		msg := &queue.TelegramMessage{
			ChatID: chatID,
			Text:   text,
		}
		if err := b.outbox.PublishTelegramMessage(context.Background(), msg); err != nil {
			logger.Error("Failed to queue telegram message", logger.Err(err))
		}
		return nil
	}

	_, err := b.send.Send(&telebot.Chat{ID: chatID}, text, b.sendOptions())
	return err
}

func (b *Bot) handleStart(c telebot.Context) error {
	return b.queueOrSend(c.Sender().ID, welcomeText)
}

func (b *Bot) handleHelp(c telebot.Context) error {
	return b.queueOrSend(c.Sender().ID, helpText)
}

func (b *Bot) handleJoke(c telebot.Context) error {
	return b.queueOrSend(c.Sender().ID, b.jokeText(context.Background()))
}

func (b *Bot) handleRecent(c telebot.Context) error {
	return b.queueOrSend(c.Sender().ID, b.recentText(context.Background()))
}

func (b *Bot) jokeText(ctx context.Context) string {
	res := b.svc.Joke(ctx)
	if res.ID != nil {
		return fmt.Sprintf("%s\n\n#%d", res.Text, *res.ID)
	}
	return res.Text
}

func (b *Bot) recentText(ctx context.Context) string {
	if !b.svc.Persistent() {
		return "Joke history is not enabled."
	}

	jokes, err := b.svc.Recent(ctx)
	if err != nil {
		logger.Error("Failed to list recent jokes", logger.Err(err))
		return "Sorry, the joke history is unavailable right now. Try again later!"
	}
	if len(jokes) == 0 {
		return "No jokes yet. Use /joke to get one!"
	}

	var sb strings.Builder
	sb.WriteString("*Recent jokes*\n")
	for _, j := range jokes {
		fmt.Fprintf(&sb, "\n#%d %s", j.ID, j.Text)
	}
	return sb.String()
}

const (
	welcomeText = "*Welcome to the Dad Joke Bot!*\n\n" +
		"I tell dad jokes on demand.\n\n" +
		"Commands:\n" +
		"- /joke - Get a dad joke\n" +
		"- /recent - Show the latest jokes\n" +
		"- /help - Show this help message"

	helpText = "*Help*\n\n" +
		"Commands:\n" +
		"- /start - Start the bot\n" +
		"- /joke - Get a dad joke\n" +
		"- /recent - Show the latest jokes\n" +
		"- /help - Show this help message"
)
