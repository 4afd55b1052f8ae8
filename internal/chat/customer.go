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

// CustomerSession is the storefront widget's view of the chat core. It owns a
// single conversation id; the widget persists that id locally so a page reload
// resumes the same conversation.
type CustomerSession struct {
	deps Deps
	log  *slog.Logger

	mu      sync.Mutex
	convID  primitive.ObjectID
	started bool
	typist  *Typist
	cancels []func()
}

// NewCustomerSession creates a session with no conversation attached yet.
func NewCustomerSession(deps Deps) *CustomerSession {
	return &CustomerSession{
		deps: deps,
		log:  deps.Log.With(sl.Module("chat.customer")),
	}
}

// Start opens a new conversation from the intake form, arms the auto-reply
// fallback against the presence snapshot of this instant, and alerts the ops
// channel if nobody is online.
func (s *CustomerSession) Start(intake entity.Intake) (*entity.Conversation, error) {
	conv, err := s.deps.Conversations.Create(intake)
	if err != nil {
		return nil, err
	}

	s.attach(conv.ID)

	s.deps.AutoReply.ConversationCreated(conv.ID)
	if s.deps.Notifier != nil && !s.deps.Presence.AnyOnline(entity.RoleAgent) {
		s.deps.Notifier.AgentsOffline(*conv)
	}

	return conv, nil
}

// Resume attaches the session to a previously started conversation. If the
// conversation was administratively deleted the local reference is cleared
// and ErrNotFound returned: the widget falls back to the intake form.
func (s *CustomerSession) Resume(convID primitive.ObjectID) (*entity.Conversation, error) {
	conv, err := s.deps.Conversations.Get(convID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			s.mu.Lock()
			s.started = false
			s.convID = primitive.NilObjectID
			s.mu.Unlock()
		}
		return nil, err
	}

	s.attach(conv.ID)
	return conv, nil
}

func (s *CustomerSession) attach(convID primitive.ObjectID) {
	s.mu.Lock()
	old := s.typist
	s.convID = convID
	s.started = true
	s.typist = NewTypist(s.deps.Typing, convID.Hex(), "customer", entity.RoleCustomer,
		time.Duration(s.deps.TypingQuiet)*time.Millisecond)
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// ConversationID returns the attached conversation id, or false when the
// session has not started one.
func (s *CustomerSession) ConversationID() (primitive.ObjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convID, s.started
}

// Send appends a customer message. On failure the caller keeps its compose
// state and retries; nothing is cleared here.
func (s *CustomerSession) Send(content string, attachments []entity.Attachment) (entity.Message, error) {
	convID, ok := s.ConversationID()
	if !ok {
		return entity.Message{}, entity.ValidationError("no conversation started")
	}

	msg, err := s.deps.Send(convID, entity.RoleCustomer, "", content, attachments)
	if err != nil {
		return entity.Message{}, err
	}

	s.mu.Lock()
	typist := s.typist
	s.mu.Unlock()
	if typist != nil {
		typist.Stop()
	}

	return msg, nil
}

// Messages returns the ordered log of the attached conversation, marking the
// agent's messages read as a side effect of the customer viewing them.
func (s *CustomerSession) Messages() ([]entity.Message, error) {
	convID, ok := s.ConversationID()
	if !ok {
		return nil, entity.ValidationError("no conversation started")
	}
	if err := s.deps.Conversations.MarkMessagesRead(convID, entity.RoleCustomer); err != nil {
		s.log.Warn("mark read on view failed", sl.Err(err))
	}
	return s.deps.Messages.ListOrdered(convID)
}

// WatchMessages registers for re-fetch notifications on the attached
// conversation. Returns a cancel function; Close also releases it.
func (s *CustomerSession) WatchMessages(fn func()) (func(), error) {
	convID, ok := s.ConversationID()
	if !ok {
		return nil, entity.ValidationError("no conversation started")
	}
	cancel := s.deps.Messages.Subscribe(convID, fn)
	s.addCancel(cancel)
	return cancel, nil
}

// WatchRemoteTyping delivers the agent side's typing state.
func (s *CustomerSession) WatchRemoteTyping(fn func(entity.TypingSignal)) (func(), error) {
	convID, ok := s.ConversationID()
	if !ok {
		return nil, entity.ValidationError("no conversation started")
	}
	cancel := s.deps.Typing.Watch(convID.Hex(), entity.RoleCustomer, fn)
	s.addCancel(cancel)
	return cancel, nil
}

// WatchAgentPresence reports whether any agent is online, now and on change.
func (s *CustomerSession) WatchAgentPresence(fn func(online bool)) func() {
	cancel := s.deps.Presence.Watch(entity.RoleAgent, func(roster []entity.PresenceRecord) {
		fn(len(roster) > 0)
	})
	s.addCancel(cancel)
	return cancel
}

// SetLocalTyping feeds the compose-box content into the typing state machine.
func (s *CustomerSession) SetLocalTyping(content string) {
	s.mu.Lock()
	typist := s.typist
	s.mu.Unlock()
	if typist != nil {
		typist.Input(content)
	}
}

func (s *CustomerSession) addCancel(fn func()) {
	s.mu.Lock()
	s.cancels = append(s.cancels, fn)
	s.mu.Unlock()
}

// Close releases watches and the typing machine, emitting a final "not typing"
// if the customer left mid-compose.
func (s *CustomerSession) Close() {
	s.mu.Lock()
	typist := s.typist
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	if typist != nil {
		typist.Close()
	}
	for _, cancel := range cancels {
		cancel()
	}
}
