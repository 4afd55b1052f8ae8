package chat

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/sl"
)

// ConversationStore owns durable conversation records and their unread
// bookkeeping. Raw counter arithmetic is never exposed: callers use the
// MarkMessageSent / MarkMessagesRead semantics.
type ConversationStore struct {
	repo     ConversationRepository
	messages *MessageStore
	validate *validator.Validate
	log      *slog.Logger

	mu      sync.Mutex
	nextSub int
	subs    map[int]func()
}

// NewConversationStore creates a ConversationStore. The message store is used
// to append the first message atomically with conversation creation.
func NewConversationStore(repo ConversationRepository, messages *MessageStore, log *slog.Logger) *ConversationStore {
	return &ConversationStore{
		repo:     repo,
		messages: messages,
		validate: validator.New(),
		log:      log.With(sl.Module("chat.conversations")),
		subs:     make(map[int]func()),
	}
}

// Create opens a conversation from an intake form: the record starts open with
// one unread message owed to agents, and the initial customer message is
// appended in the same call. If the append fails the record is rolled back.
func (s *ConversationStore) Create(intake entity.Intake) (*entity.Conversation, error) {
	if err := s.validate.Struct(intake); err != nil {
		return nil, entity.ValidationError("intake: %v", err)
	}

	now := time.Now()
	conv := entity.Conversation{
		ID:            primitive.NewObjectID(),
		CustomerName:  intake.Name,
		CustomerEmail: intake.Email,
		CustomerPhone: intake.Phone,
		Subject:       intake.Subject,
		Status:        entity.StatusOpen,
		UnreadAgent:   1,
		LastMessage:   intake.Message,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.InsertConversation(conv); err != nil {
		return nil, err
	}

	_, err := s.messages.Append(conv.ID, entity.RoleCustomer, "", intake.Message, nil)
	if err != nil {
		// Compensate: a conversation without its first message is useless.
		if delErr := s.repo.DeleteConversation(conv.ID); delErr != nil {
			s.log.Error("rollback of half-created conversation failed",
				slog.String("conversation_id", conv.ID.Hex()), sl.Err(delErr))
		}
		return nil, fmt.Errorf("append initial message: %w", err)
	}

	s.notify()
	return &conv, nil
}

// Get returns a conversation by id.
func (s *ConversationStore) Get(id primitive.ObjectID) (*entity.Conversation, error) {
	return s.repo.GetConversation(id)
}

// List returns all conversations, most recently updated first.
func (s *ConversationStore) List() ([]entity.Conversation, error) {
	return s.repo.ListConversations()
}

// UpdateStatus changes the lifecycle status. A resolved or closed conversation
// still accepts messages; status is advisory for the UIs.
func (s *ConversationStore) UpdateStatus(id primitive.ObjectID, status string) error {
	if !entity.ValidStatus(status) {
		return entity.ValidationError("unknown status %q", status)
	}
	if err := s.repo.SetConversationStatus(id, status); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Assign sets or clears (empty agentID) the assigned agent.
func (s *ConversationStore) Assign(id primitive.ObjectID, agentID string) error {
	if err := s.repo.SetConversationAssignee(id, agentID); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetTags replaces the conversation's tags.
func (s *ConversationStore) SetTags(id primitive.ObjectID, tags []string) error {
	if err := s.repo.SetConversationTags(id, tags); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetNotes replaces the conversation's internal notes.
func (s *ConversationStore) SetNotes(id primitive.ObjectID, notes string) error {
	if err := s.repo.SetConversationNotes(id, notes); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetPriority changes the priority label.
func (s *ConversationStore) SetPriority(id primitive.ObjectID, priority string) error {
	if err := s.repo.SetConversationPriority(id, priority); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetCategory changes the category label.
func (s *ConversationStore) SetCategory(id primitive.ObjectID, category string) error {
	if err := s.repo.SetConversationCategory(id, category); err != nil {
		return err
	}
	s.notify()
	return nil
}

// MarkMessageSent records that senderRole sent a message: the opposite party
// now owes one more read, and the list preview is refreshed.
func (s *ConversationStore) MarkMessageSent(id primitive.ObjectID, senderRole, preview string) error {
	if err := s.repo.IncrementUnread(id, entity.OtherRole(senderRole), 1); err != nil {
		return err
	}
	if err := s.repo.TouchConversation(id, preview); err != nil {
		return err
	}
	s.notify()
	return nil
}

// MarkMessagesRead records that readerRole caught up: its unread counter drops
// to zero and the other party's messages are flagged read in the log.
func (s *ConversationStore) MarkMessagesRead(id primitive.ObjectID, readerRole string) error {
	if _, err := s.messages.MarkRead(id, readerRole); err != nil {
		return err
	}
	if err := s.repo.ResetUnread(id, readerRole); err != nil {
		return err
	}
	s.notify()
	return nil
}

// Purge hard-deletes the conversation and cascades to its messages.
// Only reachable through explicit agent action.
func (s *ConversationStore) Purge(id primitive.ObjectID) error {
	if err := s.repo.DeleteConversation(id); err != nil {
		return err
	}
	if err := s.messages.Purge(id); err != nil {
		s.log.Error("message cascade after conversation purge failed",
			slog.String("conversation_id", id.Hex()), sl.Err(err))
	}
	s.notify()
	return nil
}

// Subscribe registers fn to run on any conversation insert or update.
// Returns a cancel function.
func (s *ConversationStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *ConversationStore) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
