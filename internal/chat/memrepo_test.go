package chat

import (
	"io"
	"log/slog"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// In-memory stand-ins for the Mongo repositories, mirroring their ordering and
// not-found semantics so the stores can be exercised without a database.

type memMessageRepo struct {
	mu       sync.Mutex
	messages []entity.Message
	failNext bool
}

func (r *memMessageRepo) InsertMessage(msg entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return entity.ErrTransport
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memMessageRepo) ListMessages(convID primitive.ObjectID) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Message
	for _, m := range r.messages {
		if m.ConversationID == convID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memMessageRepo) MarkMessagesRead(convID primitive.ObjectID, authorRole string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flipped int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.ConversationID == convID && m.Sender == authorRole && !m.IsRead {
			m.IsRead = true
			flipped++
		}
	}
	return flipped, nil
}

func (r *memMessageRepo) DeleteMessages(convID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ConversationID != convID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type memConversationRepo struct {
	mu            sync.Mutex
	conversations map[primitive.ObjectID]entity.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{conversations: make(map[primitive.ObjectID]entity.Conversation)}
}

func (r *memConversationRepo) InsertConversation(conv entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.ID] = conv
	return nil
}

func (r *memConversationRepo) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return nil, entity.NotFoundError("conversation", id.Hex())
	}
	return &conv, nil
}

func (r *memConversationRepo) ListConversations() ([]entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Conversation, 0, len(r.conversations))
	for _, conv := range r.conversations {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *memConversationRepo) update(id primitive.ObjectID, fn func(*entity.Conversation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.conversations[id]
	if !ok {
		return entity.NotFoundError("conversation", id.Hex())
	}
	fn(&conv)
	r.conversations[id] = conv
	return nil
}

func (r *memConversationRepo) SetConversationStatus(id primitive.ObjectID, status string) error {
	return r.update(id, func(c *entity.Conversation) { c.Status = status })
}

func (r *memConversationRepo) SetConversationAssignee(id primitive.ObjectID, agentID string) error {
	return r.update(id, func(c *entity.Conversation) { c.AssignedTo = agentID })
}

func (r *memConversationRepo) SetConversationTags(id primitive.ObjectID, tags []string) error {
	return r.update(id, func(c *entity.Conversation) { c.Tags = tags })
}

func (r *memConversationRepo) SetConversationNotes(id primitive.ObjectID, notes string) error {
	return r.update(id, func(c *entity.Conversation) { c.Notes = notes })
}

func (r *memConversationRepo) SetConversationPriority(id primitive.ObjectID, priority string) error {
	return r.update(id, func(c *entity.Conversation) { c.Priority = priority })
}

func (r *memConversationRepo) SetConversationCategory(id primitive.ObjectID, category string) error {
	return r.update(id, func(c *entity.Conversation) { c.Category = category })
}

func (r *memConversationRepo) TouchConversation(id primitive.ObjectID, lastMessage string) error {
	return r.update(id, func(c *entity.Conversation) {
		c.LastMessage = lastMessage
		c.UpdatedAt = c.UpdatedAt.Add(1) // monotonic enough for list ordering
	})
}

func (r *memConversationRepo) IncrementUnread(id primitive.ObjectID, role string, delta int) error {
	return r.update(id, func(c *entity.Conversation) {
		if role == entity.RoleAgent {
			c.UnreadAgent += delta
		} else {
			c.UnreadCustomer += delta
		}
	})
}

func (r *memConversationRepo) ResetUnread(id primitive.ObjectID, role string) error {
	return r.update(id, func(c *entity.Conversation) {
		if role == entity.RoleAgent {
			c.UnreadAgent = 0
		} else {
			c.UnreadCustomer = 0
		}
	})
}

func (r *memConversationRepo) DeleteConversation(id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[id]; !ok {
		return entity.NotFoundError("conversation", id.Hex())
	}
	delete(r.conversations, id)
	return nil
}

type memSettingsRepo struct {
	mu     sync.Mutex
	stored *entity.AutoReplySettings
}

func (r *memSettingsRepo) GetAutoReplySettings() (entity.AutoReplySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return entity.AutoReplySettings{}, entity.ErrNotFound
	}
	return *r.stored, nil
}

func (r *memSettingsRepo) SaveAutoReplySettings(settings entity.AutoReplySettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = &settings
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires the whole in-process core over the in-memory repositories.
type testEnv struct {
	msgRepo  *memMessageRepo
	convRepo *memConversationRepo
	settings *memSettingsRepo
	deps     Deps
}

func newTestEnv(autoReply entity.AutoReplySettings) *testEnv {
	lg := testLogger()
	msgRepo := &memMessageRepo{}
	convRepo := newMemConversationRepo()
	settings := &memSettingsRepo{}

	messages := NewMessageStore(msgRepo, lg)
	conversations := NewConversationStore(convRepo, messages, lg)
	presence := NewPresenceTracker()
	typing := NewTypingChannel()
	scheduler := NewAutoReplyScheduler(messages, presence, settings, autoReply, lg)

	return &testEnv{
		msgRepo:  msgRepo,
		convRepo: convRepo,
		settings: settings,
		deps: Deps{
			Log:           lg,
			Messages:      messages,
			Conversations: conversations,
			Presence:      presence,
			Typing:        typing,
			AutoReply:     scheduler,
			TypingQuiet:   50,
		},
	}
}

func validIntake() entity.Intake {
	return entity.Intake{
		Name:    "Rahim",
		Email:   "rahim@example.com",
		Subject: "Where is my order?",
		Message: "I ordered a kettle two weeks ago and nothing arrived.",
	}
}
