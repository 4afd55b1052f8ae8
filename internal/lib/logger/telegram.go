package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// Messenger is anything that can push a plain-text message to the admin chat.
type Messenger interface {
	SendMessage(msg string)
}

// telegramHandler fans records at or above its level out to Telegram while
// delegating everything to the next handler.
type telegramHandler struct {
	next  slog.Handler
	bot   Messenger
	level slog.Level
}

// SetupTelegramHandler wraps log with a handler that forwards records at or
// above minLevel to the given messenger.
func SetupTelegramHandler(log *slog.Logger, bot Messenger, minLevel slog.Level) *slog.Logger {
	return slog.New(&telegramHandler{
		next:  log.Handler(),
		bot:   bot,
		level: minLevel,
	})
}

func (h *telegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *telegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError && r.Level >= h.level && h.bot != nil {
		text := fmt.Sprintf("[%s] %s", r.Level, r.Message)
		r.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value)
			return true
		})
		go h.bot.SendMessage(text)
	}
	return h.next.Handle(ctx, r)
}

func (h *telegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &telegramHandler{next: h.next.WithAttrs(attrs), bot: h.bot, level: h.level}
}

func (h *telegramHandler) WithGroup(name string) slog.Handler {
	return &telegramHandler{next: h.next.WithGroup(name), bot: h.bot, level: h.level}
}
