package chat

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// MessageRepository is the durable record interface for messages.
type MessageRepository interface {
	InsertMessage(msg entity.Message) error
	ListMessages(convID primitive.ObjectID) ([]entity.Message, error)
	MarkMessagesRead(convID primitive.ObjectID, authorRole string) (int64, error)
	DeleteMessages(convID primitive.ObjectID) error
}

// ConversationRepository is the durable record interface for conversations.
type ConversationRepository interface {
	InsertConversation(conv entity.Conversation) error
	GetConversation(id primitive.ObjectID) (*entity.Conversation, error)
	ListConversations() ([]entity.Conversation, error)
	SetConversationStatus(id primitive.ObjectID, status string) error
	SetConversationAssignee(id primitive.ObjectID, agentID string) error
	SetConversationTags(id primitive.ObjectID, tags []string) error
	SetConversationNotes(id primitive.ObjectID, notes string) error
	SetConversationPriority(id primitive.ObjectID, priority string) error
	SetConversationCategory(id primitive.ObjectID, category string) error
	TouchConversation(id primitive.ObjectID, lastMessage string) error
	IncrementUnread(id primitive.ObjectID, role string, delta int) error
	ResetUnread(id primitive.ObjectID, role string) error
	DeleteConversation(id primitive.ObjectID) error
}

// SettingsRepository is the configuration interface for the auto-reply singleton.
type SettingsRepository interface {
	GetAutoReplySettings() (entity.AutoReplySettings, error)
	SaveAutoReplySettings(settings entity.AutoReplySettings) error
}
