package bot

import (
	"context"
	"errors"
	"io"
	"testing"

	"dadjoke/internal/config"
	"dadjoke/internal/models"
	"dadjoke/internal/queue"
	"dadjoke/internal/service"
	"dadjoke/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

func init() {
	logger.Init("error", io.Discard)
}

type fakeService struct {
	result     service.Result
	recent     []models.Joke
	recentErr  error
	persistent bool
}

func (f *fakeService) Joke(context.Context) service.Result { return f.result }

func (f *fakeService) Recent(context.Context) ([]models.Joke, error) {
	return f.recent, f.recentErr
}

func (f *fakeService) Persistent() bool { return f.persistent }

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	errs []error
	sent []sentMessage
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	chat := to.(*telebot.Chat)
	f.sent = append(f.sent, sentMessage{chatID: chat.ID, text: what.(string)})
	return &telebot.Message{}, nil
}

type fakeOutbox struct {
	published []*queue.TelegramMessage
	err       error
}

func (f *fakeOutbox) PublishTelegramMessage(_ context.Context, msg *queue.TelegramMessage) error {
	f.published = append(f.published, msg)
	return f.err
}

func (f *fakeOutbox) ConsumeTelegramMessages(ctx context.Context, _ func(*queue.TelegramMessage) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func testBot(t *testing.T, svc JokeService, outbox Outbox) (*Bot, *fakeSender) {
	t.Helper()
	b, err := New(config.BotConfig{Token: "test-token", ParseMode: "Markdown"}, svc, outbox)
	require.NoError(t, err)

	s := &fakeSender{}
	b.send = s
	b.retryDelay = 0
	return b, s
}

func TestNewBot(t *testing.T) {
	_, err := New(config.BotConfig{Token: "test-token", ParseMode: "Markdown"}, &fakeService{}, nil)
	assert.NoError(t, err)
}

func TestNewBotNoToken(t *testing.T) {
	_, err := New(config.BotConfig{ParseMode: "Markdown"}, &fakeService{}, nil)
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestJokeText(t *testing.T) {
	id := int64(7)
	tests := []struct {
		name   string
		result service.Result
		want   string
	}{
		{"unsaved", service.Result{Text: "A joke."}, "A joke."},
		{"saved", service.Result{Text: "A joke.", ID: &id}, "A joke.\n\n#7"},
		{"fallback", service.Result{Text: service.FallbackJoke, Fallback: true}, service.FallbackJoke},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := testBot(t, &fakeService{result: tt.result}, nil)
			assert.Equal(t, tt.want, b.jokeText(context.Background()))
		})
	}
}

func TestRecentText(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		want string
	}{
		{
			name: "disabled",
			svc:  &fakeService{},
			want: "Joke history is not enabled.",
		},
		{
			name: "empty",
			svc:  &fakeService{persistent: true},
			want: "No jokes yet. Use /joke to get one!",
		},
		{
			name: "storage error",
			svc:  &fakeService{persistent: true, recentErr: errors.New("connection refused")},
			want: "Sorry, the joke history is unavailable right now. Try again later!",
		},
		{
			name: "listed newest first",
			svc: &fakeService{persistent: true, recent: []models.Joke{
				{ID: 2, Text: "second"},
				{ID: 1, Text: "first"},
			}},
			want: "*Recent jokes*\n\n#2 second\n#1 first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := testBot(t, tt.svc, nil)
			assert.Equal(t, tt.want, b.recentText(context.Background()))
		})
	}
}

func TestQueueOrSendInline(t *testing.T) {
	b, s := testBot(t, &fakeService{}, nil)

	require.NoError(t, b.queueOrSend(42, "hello"))
	assert.Equal(t, []sentMessage{{chatID: 42, text: "hello"}}, s.sent)
}

func TestQueueOrSendUsesOutbox(t *testing.T) {
	outbox := &fakeOutbox{}
	b, s := testBot(t, &fakeService{}, outbox)

	require.NoError(t, b.queueOrSend(42, "hello"))
	assert.Empty(t, s.sent)
	require.Len(t, outbox.published, 1)
	assert.Equal(t, &queue.TelegramMessage{ChatID: 42, Text: "hello"}, outbox.published[0])
}

func TestQueueOrSendOutboxErrorSwallowed(t *testing.T) {
	outbox := &fakeOutbox{err: errors.New("nats: timeout")}
	b, _ := testBot(t, &fakeService{}, outbox)

	assert.NoError(t, b.queueOrSend(42, "hello"))
}

func TestSendMessageWithRetry(t *testing.T) {
	tooMany := errors.New("telegram: Too Many Requests: retry after 1 (429)")

	tests := []struct {
		name     string
		errs     []error
		wantErr  error
		wantSent int
	}{
		{"first try", nil, nil, 1},
		{"after rate limit", []error{tooMany, tooMany}, nil, 1},
		{"gives up", []error{tooMany, tooMany, tooMany}, ErrRateLimited, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, s := testBot(t, &fakeService{}, nil)
			s.errs = tt.errs

			err := b.sendMessageWithRetry(1, "joke")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, s.sent, tt.wantSent)
		})
	}
}

func TestSendMessageWithRetryOtherError(t *testing.T) {
	b, s := testBot(t, &fakeService{}, nil)
	blocked := errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	s.errs = []error{blocked}

	err := b.sendMessageWithRetry(1, "joke")
	assert.ErrorIs(t, err, blocked)
	assert.Empty(t, s.sent)
}
