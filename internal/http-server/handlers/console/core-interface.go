package console

import (
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// Core defines the methods required by the agent console handlers.
type Core interface {
	ListConversations() ([]entity.Conversation, error)
	OpenConversation(convID primitive.ObjectID) (*entity.Conversation, []entity.Message, error)
	AgentSend(convID primitive.ObjectID, agentID, content string, attachments []entity.Attachment) (entity.Message, error)
	UploadAttachments(convID primitive.ObjectID, uploader string, files []*multipart.FileHeader) ([]entity.Attachment, error)
	UpdateStatus(convID primitive.ObjectID, status string) error
	AssignConversation(convID primitive.ObjectID, agentID string) error
	SetTags(convID primitive.ObjectID, tags []string) error
	SetNotes(convID primitive.ObjectID, notes string) error
	SetPriority(convID primitive.ObjectID, priority string) error
	SetCategory(convID primitive.ObjectID, category string) error
	MarkRead(convID primitive.ObjectID) error
	PurgeConversation(convID primitive.ObjectID) error
	AgentRoster() []entity.PresenceRecord
	SuggestReply(convID primitive.ObjectID) (string, error)
}
