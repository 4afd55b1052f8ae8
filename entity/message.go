package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single unit of conversation content. Content and attachments are
// immutable once created; only the read flag transitions, and only false to true.
// SenderID is empty for the anonymous customer and for automated replies.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	Sender         string             `json:"sender" bson:"sender"` // "customer" | "agent"
	SenderID       string             `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	Content        string             `json:"content" bson:"content"`
	IsRead         bool               `json:"is_read" bson:"is_read"`
	Attachments    []Attachment       `json:"attachments,omitempty" bson:"attachments,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// System reports whether the message was injected by the auto-reply mechanism
// rather than authored by a human agent.
func (m *Message) System() bool {
	return m.Sender == RoleAgent && m.SenderID == ""
}
