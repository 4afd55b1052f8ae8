package chat

import (
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/sl"
)

// AgentSession is the console's view of the chat core: a live list over all
// conversations plus a detail view over the selected one. Creating a session
// joins the agent presence roster; Close leaves it, so the customer-facing
// "is anyone online" state tracks the console connections exactly.
type AgentSession struct {
	deps    Deps
	agentID string
	log     *slog.Logger

	presence *PresenceHandle

	mu       sync.Mutex
	selected primitive.ObjectID
	hasSel   bool
	typist   *Typist
	cancels  []func()
}

// NewAgentSession creates a session for one console connection and marks the
// agent online.
func NewAgentSession(deps Deps, agentID string) *AgentSession {
	return &AgentSession{
		deps:     deps,
		agentID:  agentID,
		log:      deps.Log.With(sl.Module("chat.agent"), slog.String("agent", agentID)),
		presence: deps.Presence.Join(entity.RoleAgent, agentID),
	}
}

// Conversations returns the live list, most recently updated first.
func (s *AgentSession) Conversations() ([]entity.Conversation, error) {
	return s.deps.Conversations.List()
}

// WatchConversations fires on any conversation insert or update; the console
// re-fetches the list rather than patching rows.
func (s *AgentSession) WatchConversations(fn func()) func() {
	cancel := s.deps.Conversations.Subscribe(fn)
	s.addCancel(cancel)
	return cancel
}

// Open selects a conversation for the detail view and marks the customer's
// messages read: the agent-owed unread counter visibly drops to zero.
func (s *AgentSession) Open(convID primitive.ObjectID) (*entity.Conversation, []entity.Message, error) {
	conv, err := s.deps.Conversations.Get(convID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.deps.Conversations.MarkMessagesRead(convID, entity.RoleAgent); err != nil {
		return nil, nil, err
	}

	messages, err := s.deps.Messages.ListOrdered(convID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	old := s.typist
	s.selected = convID
	s.hasSel = true
	s.typist = NewTypist(s.deps.Typing, convID.Hex(), s.agentID, entity.RoleAgent,
		time.Duration(s.deps.TypingQuiet)*time.Millisecond)
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}

	conv.UnreadAgent = 0
	return conv, messages, nil
}

// Send appends an agent message to the selected conversation.
func (s *AgentSession) Send(content string, attachments []entity.Attachment) (entity.Message, error) {
	convID, ok := s.Selected()
	if !ok {
		return entity.Message{}, entity.ValidationError("no conversation selected")
	}

	msg, err := s.deps.Send(convID, entity.RoleAgent, s.agentID, content, attachments)
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

// Selected returns the conversation shown in the detail view, if any.
func (s *AgentSession) Selected() (primitive.ObjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSel
}

// UpdateStatus, Assign, SetTags and SetNotes are the console's bulk mutators.
// They work on any conversation, not just the selected one.

func (s *AgentSession) UpdateStatus(convID primitive.ObjectID, status string) error {
	return s.deps.Conversations.UpdateStatus(convID, status)
}

func (s *AgentSession) Assign(convID primitive.ObjectID, agentID string) error {
	return s.deps.Conversations.Assign(convID, agentID)
}

func (s *AgentSession) SetTags(convID primitive.ObjectID, tags []string) error {
	return s.deps.Conversations.SetTags(convID, tags)
}

func (s *AgentSession) SetNotes(convID primitive.ObjectID, notes string) error {
	return s.deps.Conversations.SetNotes(convID, notes)
}

// Purge hard-deletes a conversation and its messages. Explicit agent action only.
func (s *AgentSession) Purge(convID primitive.ObjectID) error {
	s.log.Info("administrative purge", slog.String("conversation_id", convID.Hex()))
	return s.deps.Conversations.Purge(convID)
}

// WatchMessages registers for re-fetch notifications on the selected
// conversation. Returns a cancel function so a re-open can swap watches.
func (s *AgentSession) WatchMessages(fn func()) (func(), error) {
	convID, ok := s.Selected()
	if !ok {
		return nil, entity.ValidationError("no conversation selected")
	}
	cancel := s.deps.Messages.Subscribe(convID, fn)
	s.addCancel(cancel)
	return cancel, nil
}

// WatchRemoteTyping delivers the customer's typing state for the selected
// conversation.
func (s *AgentSession) WatchRemoteTyping(fn func(entity.TypingSignal)) (func(), error) {
	convID, ok := s.Selected()
	if !ok {
		return nil, entity.ValidationError("no conversation selected")
	}
	cancel := s.deps.Typing.Watch(convID.Hex(), entity.RoleAgent, fn)
	s.addCancel(cancel)
	return cancel, nil
}

// WatchRoster delivers the online-agent roster, now and on change.
func (s *AgentSession) WatchRoster(fn func([]entity.PresenceRecord)) func() {
	cancel := s.deps.Presence.Watch(entity.RoleAgent, fn)
	s.addCancel(cancel)
	return cancel
}

// SetLocalTyping feeds the compose-box content into the typing state machine.
func (s *AgentSession) SetLocalTyping(content string) {
	s.mu.Lock()
	typist := s.typist
	s.mu.Unlock()
	if typist != nil {
		typist.Input(content)
	}
}

func (s *AgentSession) addCancel(fn func()) {
	s.mu.Lock()
	s.cancels = append(s.cancels, fn)
	s.mu.Unlock()
}

// Close leaves the presence roster, cancels watches and closes the typing
// machine. Called when the console connection ends, gracefully or not.
func (s *AgentSession) Close() {
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
	s.presence.Leave()
}
