// Package notify posts admin notifications to a Telegram chat:
// check-in confirmations, events reaching capacity, and error-level
// log records forwarded through logger.AlertHandler.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"campusconnect/internal/config"
	"campusconnect/lib/sl"
)

type Telegram struct {
	log    *slog.Logger
	api    *tgbotapi.Bot
	chatId int64
}

// New returns nil when the notifier is disabled in configuration;
// callers treat a nil notifier as a no-op.
func New(conf *config.Config, log *slog.Logger) (*Telegram, error) {
	if !conf.Telegram.Enabled {
		return nil, nil
	}
	if conf.Telegram.ChatId == 0 {
		return nil, fmt.Errorf("telegram chat id is not set")
	}
	api, err := tgbotapi.NewBot(conf.Telegram.ApiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	return &Telegram{
		log:    log.With(sl.Module("notify.telegram")),
		api:    api,
		chatId: conf.Telegram.ChatId,
	}, nil
}

// Send posts one message to the configured chat. Delivery failures
// are logged and swallowed: notifications never fail an operation.
func (t *Telegram) Send(msg string) {
	if t == nil || t.api == nil {
		return
	}
	_, err := t.api.SendMessage(t.chatId, msg, &tgbotapi.SendMessageOpts{
		ParseMode: "Markdown",
	})
	if err != nil {
		t.log.Warn("telegram send failed", sl.Err(err))
	}
}
