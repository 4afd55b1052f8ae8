package core

import (
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
	"ShopDesk/internal/chat"
	"ShopDesk/internal/lib/sl"
)

// StartChat opens a conversation from the storefront intake form. The session
// arms the auto-reply fallback and the offline alert against the presence
// snapshot of this instant.
func (c *Core) StartChat(intake entity.Intake) (*entity.Conversation, error) {
	session := chat.NewCustomerSession(c.deps)
	defer session.Close()
	return session.Start(intake)
}

// GetChat returns the conversation a widget holds a reference to. ErrNotFound
// tells the widget to clear its local reference and show the intake form again.
func (c *Core) GetChat(convID primitive.ObjectID) (*entity.Conversation, error) {
	return c.deps.Conversations.Get(convID)
}

// CustomerMessages returns the ordered log and marks the agent side's
// messages read, resetting the customer-owed unread counter.
func (c *Core) CustomerMessages(convID primitive.ObjectID) ([]entity.Message, error) {
	if _, err := c.deps.Conversations.Get(convID); err != nil {
		return nil, err
	}
	if err := c.deps.Conversations.MarkMessagesRead(convID, entity.RoleCustomer); err != nil {
		c.log.Warn("customer mark read", sl.Err(err))
	}
	return c.deps.Messages.ListOrdered(convID)
}

// CustomerSend appends a customer message. When the append fails after
// attachments were already uploaded, the orphaned files are discarded so
// nothing dangles in storage.
func (c *Core) CustomerSend(convID primitive.ObjectID, content string, attachments []entity.Attachment) (entity.Message, error) {
	if _, err := c.deps.Conversations.Get(convID); err != nil {
		return entity.Message{}, err
	}

	msg, err := c.deps.Send(convID, entity.RoleCustomer, "", content, attachments)
	if err != nil {
		c.discardAttachments(attachments)
		return entity.Message{}, err
	}
	return msg, nil
}

func (c *Core) discardAttachments(attachments []entity.Attachment) {
	if c.files == nil {
		return
	}
	for _, att := range attachments {
		if err := c.files.DeleteFile(att.FileID); err != nil {
			c.log.Warn("discarding orphaned attachment",
				slog.String("file_id", att.FileID.Hex()), sl.Err(err))
		}
	}
}
