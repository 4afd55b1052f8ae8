package chat

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/sl"
)

// AutoReplyScheduler injects one canned agent message into a conversation that
// was opened while no agent was online. The decision uses the presence and
// configuration snapshot taken at creation time and is never re-evaluated: an
// agent coming online a second later does not disarm the timer, and a config
// change mid-flight does not alter it. The race against a real agent reply is
// resolved by message ordering, unless suppression is explicitly enabled.
//
// Best effort by design: one injection attempt, logged and dropped on failure,
// and a process teardown before the delay elapses simply loses the reply.
type AutoReplyScheduler struct {
	messages *MessageStore
	presence *PresenceTracker
	settings SettingsRepository
	defaults entity.AutoReplySettings
	log      *slog.Logger

	mu    sync.Mutex
	armed map[primitive.ObjectID]bool
}

// NewAutoReplyScheduler creates a scheduler. defaults are used until an
// administrator saves explicit settings.
func NewAutoReplyScheduler(messages *MessageStore, presence *PresenceTracker, settings SettingsRepository, defaults entity.AutoReplySettings, log *slog.Logger) *AutoReplyScheduler {
	return &AutoReplyScheduler{
		messages: messages,
		presence: presence,
		settings: settings,
		defaults: defaults,
		log:      log.With(sl.Module("chat.autoreply")),
		armed:    make(map[primitive.ObjectID]bool),
	}
}

// Settings returns the active configuration, falling back to defaults when
// none has been stored yet.
func (s *AutoReplyScheduler) Settings() entity.AutoReplySettings {
	cfg, err := s.settings.GetAutoReplySettings()
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			s.log.Warn("loading auto-reply settings, using defaults", sl.Err(err))
		}
		return s.defaults
	}
	return cfg
}

// ConversationCreated arms the timer for a freshly created conversation if the
// snapshot says no agent is online and auto-reply is enabled. Arming is
// per-conversation idempotent: at most one canned reply per creation event.
func (s *AutoReplyScheduler) ConversationCreated(convID primitive.ObjectID) {
	cfg := s.Settings()
	if !cfg.Enabled {
		return
	}
	if s.presence.AnyOnline(entity.RoleAgent) {
		return
	}

	s.mu.Lock()
	if s.armed[convID] {
		s.mu.Unlock()
		return
	}
	s.armed[convID] = true
	s.mu.Unlock()

	delay := time.Duration(cfg.DelaySeconds) * time.Second
	time.AfterFunc(delay, func() {
		s.fire(convID, cfg)
	})

	s.log.Debug("auto-reply armed",
		slog.String("conversation_id", convID.Hex()),
		slog.Int("delay_seconds", cfg.DelaySeconds),
	)
}

func (s *AutoReplyScheduler) fire(convID primitive.ObjectID, cfg entity.AutoReplySettings) {
	if cfg.SuppressAfterAgentReply && s.agentReplied(convID) {
		s.log.Debug("auto-reply suppressed, agent already replied",
			slog.String("conversation_id", convID.Hex()))
		return
	}

	// The canned reply is system-authored (sender_id empty). It does not
	// move unread counters: only human sends do.
	_, err := s.messages.Append(convID, entity.RoleAgent, "", cfg.Message, nil)
	if err != nil {
		s.log.Error("auto-reply injection failed, dropping",
			slog.String("conversation_id", convID.Hex()), sl.Err(err))
	}
}

func (s *AutoReplyScheduler) agentReplied(convID primitive.ObjectID) bool {
	messages, err := s.messages.ListOrdered(convID)
	if err != nil {
		return false
	}
	for _, msg := range messages {
		if msg.Sender == entity.RoleAgent && msg.SenderID != "" {
			return true
		}
	}
	return false
}
