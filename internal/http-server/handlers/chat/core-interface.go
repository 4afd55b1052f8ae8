package chat

import (
	"io"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// Core defines the methods required by the storefront widget handlers.
type Core interface {
	StartChat(intake entity.Intake) (*entity.Conversation, error)
	GetChat(convID primitive.ObjectID) (*entity.Conversation, error)
	CustomerMessages(convID primitive.ObjectID) ([]entity.Message, error)
	CustomerSend(convID primitive.ObjectID, content string, attachments []entity.Attachment) (entity.Message, error)
	UploadAttachments(convID primitive.ObjectID, uploader string, files []*multipart.FileHeader) ([]entity.Attachment, error)
	DownloadFile(fileID primitive.ObjectID) (string, string, io.ReadCloser, error)
}
