package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

func textUpdate(chatID, fromID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: fromID},
	}}
}

func TestTelegramRepliesInAllowedChat(t *testing.T) {
	sender := &fakeSender{}
	d := startDispatcher(t, func(_ context.Context, text string) string { return "re: " + text })
	tg := &Telegram{send: sender, selfID: 1, chatID: 42, dispatcher: d, logger: zerolog.Nop()}
	ctx := context.Background()

	tg.handleUpdate(ctx, textUpdate(42, 7, "config list"))
	tg.handleUpdate(ctx, textUpdate(99, 7, "from elsewhere"))
	tg.handleUpdate(ctx, textUpdate(42, 1, "my own message"))
	tg.handleUpdate(ctx, tgbotapi.Update{})

	require.Eventually(t, func() bool { return len(sender.messages()) == 1 }, time.Second, 5*time.Millisecond)
	// give any wrongly queued message a chance to show up
	_, err := d.Submit(ctx, "flush")
	require.NoError(t, err)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].ChatID)
	assert.Equal(t, "re: config list", msgs[0].Text)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Nil(t, splitMessage("", 10))

	parts := splitMessage("line one\nline two\nline three", 12)
	assert.Equal(t, []string{"line one\n", "line two\n", "line three"}, parts)

	long := strings.Repeat("•", 10)
	for _, p := range splitMessage(long, 7) {
		assert.LessOrEqual(t, len(p), 7)
		assert.True(t, strings.HasPrefix(p, "•"))
	}
}
