package chat

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/lib/sl"
)

// MessageStore is the ordered, append-only message log of all conversations.
// It assigns creation timestamps itself so ordering is authoritative regardless
// of client-perceived send order, and notifies subscribers after every change.
// Notifications are at-least-once and carry no payload: consumers re-fetch the
// ordered list instead of applying deltas.
type MessageStore struct {
	repo MessageRepository
	log  *slog.Logger

	mu        sync.Mutex
	lastStamp map[primitive.ObjectID]time.Time
	nextSub   int
	subs      map[primitive.ObjectID]map[int]func()
}

// NewMessageStore creates a MessageStore over the given repository.
func NewMessageStore(repo MessageRepository, log *slog.Logger) *MessageStore {
	return &MessageStore{
		repo:      repo,
		log:       log.With(sl.Module("chat.messages")),
		lastStamp: make(map[primitive.ObjectID]time.Time),
		subs:      make(map[primitive.ObjectID]map[int]func()),
	}
}

// Append persists a new message and returns it with its store-assigned
// timestamp, strictly later than any prior message in the conversation.
// Fails with ErrValidation when both content and attachments are empty.
func (s *MessageStore) Append(convID primitive.ObjectID, sender, senderID, content string, attachments []entity.Attachment) (entity.Message, error) {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return entity.Message{}, entity.ValidationError("message needs content or attachments")
	}

	msg := entity.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		Sender:         sender,
		SenderID:       senderID,
		Content:        content,
		Attachments:    attachments,
		CreatedAt:      s.stamp(convID),
	}

	if err := s.repo.InsertMessage(msg); err != nil {
		return entity.Message{}, err
	}

	s.notify(convID)
	return msg, nil
}

// stamp returns a timestamp strictly later than any handed out for convID.
func (s *MessageStore) stamp(convID primitive.ObjectID) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastStamp[convID]; ok && !now.After(last) {
		now = last.Add(time.Microsecond)
	}
	s.lastStamp[convID] = now
	return now
}

// ListOrdered returns all messages of a conversation in creation order.
func (s *MessageStore) ListOrdered(convID primitive.ObjectID) ([]entity.Message, error) {
	return s.repo.ListMessages(convID)
}

// MarkRead flips is_read on every unread message authored by the role opposite
// to readerRole. Idempotent; reports whether anything changed.
func (s *MessageStore) MarkRead(convID primitive.ObjectID, readerRole string) (bool, error) {
	flipped, err := s.repo.MarkMessagesRead(convID, entity.OtherRole(readerRole))
	if err != nil {
		return false, err
	}
	if flipped > 0 {
		s.notify(convID)
	}
	return flipped > 0, nil
}

// Purge deletes every message of a conversation (administrative cascade).
func (s *MessageStore) Purge(convID primitive.ObjectID) error {
	if err := s.repo.DeleteMessages(convID); err != nil {
		return err
	}
	s.notify(convID)
	return nil
}

// Subscribe registers fn to run whenever the message set of convID changes.
// Returns a cancel function.
func (s *MessageStore) Subscribe(convID primitive.ObjectID, fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[convID] == nil {
		s.subs[convID] = make(map[int]func())
	}
	s.subs[convID][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[convID], id)
		if len(s.subs[convID]) == 0 {
			delete(s.subs, convID)
		}
	}
}

func (s *MessageStore) notify(convID primitive.ObjectID) {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.subs[convID]))
	for _, fn := range s.subs[convID] {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
