package chat

import (
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// Notifier is told about conversations opened while every agent is offline.
type Notifier interface {
	AgentsOffline(conv entity.Conversation)
}

// Deps bundles the stores and channels both session clients are built over.
// The two clients are thin asymmetric adapters over this one core, so the
// read/unread/ordering semantics cannot diverge between the two UIs.
type Deps struct {
	Log           *slog.Logger
	Messages      *MessageStore
	Conversations *ConversationStore
	Presence      *PresenceTracker
	Typing        *TypingChannel
	AutoReply     *AutoReplyScheduler
	Notifier      Notifier
	TypingQuiet   int // milliseconds
}

// Send appends a message and settles the unread bookkeeping. The append is
// authoritative; a later counter failure is logged but the message stands:
// an already-persisted message is never lost to an unrelated error.
func (d *Deps) Send(convID primitive.ObjectID, role, senderID, content string, attachments []entity.Attachment) (entity.Message, error) {
	msg, err := d.Messages.Append(convID, role, senderID, content, attachments)
	if err != nil {
		return entity.Message{}, err
	}

	preview := content
	if preview == "" && len(attachments) > 0 {
		preview = attachments[0].Filename
	}
	if err := d.Conversations.MarkMessageSent(convID, role, preview); err != nil {
		d.Log.Error("unread bookkeeping after send failed",
			slog.String("conversation_id", convID.Hex()),
			slog.String("sender", role),
		)
	}

	return msg, nil
}
