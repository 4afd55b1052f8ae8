package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"ShopDesk/entity"
	"ShopDesk/internal/config"
	"ShopDesk/internal/lib/sl"
)

// TelegramNotifier pushes operational alerts to the admin Telegram chat. It
// also serves as the sink for error-level log forwarding.
type TelegramNotifier struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	adminId int64
}

// NewTelegramNotifier creates the notifier, or returns nil when Telegram is
// disabled in config. A nil notifier is safe to leave unwired.
func NewTelegramNotifier(conf *config.Config, log *slog.Logger) (*TelegramNotifier, error) {
	if !conf.Telegram.Enabled {
		return nil, nil
	}

	api, err := tgbotapi.NewBot(conf.Telegram.ApiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}

	return &TelegramNotifier{
		log:     log.With(sl.Module("notify")),
		api:     api,
		adminId: conf.Telegram.AdminId,
	}, nil
}

// SendMessage pushes a plain-text message to the admin chat.
func (t *TelegramNotifier) SendMessage(msg string) {
	if msg == "" {
		return
	}
	_, err := t.api.SendMessage(t.adminId, msg, &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.Warn("sending telegram message", sl.Err(err))
	}
}

// AgentsOffline alerts the admin chat that a conversation was opened while
// every agent was offline, so somebody can pick it up before the auto-reply
// is all the customer ever hears.
func (t *TelegramNotifier) AgentsOffline(conv entity.Conversation) {
	text := fmt.Sprintf(
		"New support conversation with no agents online\nFrom: %s <%s>\nSubject: %s",
		conv.CustomerName, conv.CustomerEmail, conv.Subject,
	)
	go t.SendMessage(text)
}
