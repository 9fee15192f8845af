package bot

import (
	"context"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// maxMessageLen is Telegram's limit for one text message
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram receives chat messages and sends replies through the Bot API
type Telegram struct {
	api        *tgbotapi.BotAPI
	send       sender
	selfID     int64
	chatID     int64
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// NewTelegram authorizes with token. A non-zero chatID restricts the bot
// to that chat.
func NewTelegram(token string, chatID int64, dispatcher *Dispatcher, logger zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "telegram").Logger()
	logger.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	return &Telegram{
		api:        api,
		send:       api,
		selfID:     api.Self.ID,
		chatID:     chatID,
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Run polls for updates until ctx is cancelled
func (t *Telegram) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.api.GetUpdatesChan(updateConfig)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return
	}
	if msg.From != nil && msg.From.ID == t.selfID {
		return
	}
	chatID := msg.Chat.ID
	if t.chatID != 0 && chatID != t.chatID {
		t.logger.Debug().Int64("chat_id", chatID).Msg("Ignoring message from other chat")
		return
	}

	err := t.dispatcher.Enqueue(ctx, msg.Text, func(reply string) {
		t.reply(chatID, reply)
	})
	if err != nil {
		t.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to queue message")
	}
}

func (t *Telegram) reply(chatID int64, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := t.send.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			t.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
			return
		}
	}
}

// splitMessage cuts text into pieces of at most limit bytes, preferring
// line breaks.
func splitMessage(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n') + 1
		if cut == 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
