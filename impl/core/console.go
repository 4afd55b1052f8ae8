package core

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ShopDesk/entity"
)

// ListConversations returns all conversations for the console dashboard,
// most recently updated first.
func (c *Core) ListConversations() ([]entity.Conversation, error) {
	return c.deps.Conversations.List()
}

// OpenConversation returns the detail view and marks the customer's messages
// read: the agent-owed unread counter visibly drops to zero.
func (c *Core) OpenConversation(convID primitive.ObjectID) (*entity.Conversation, []entity.Message, error) {
	conv, err := c.deps.Conversations.Get(convID)
	if err != nil {
		return nil, nil, err
	}
	if err := c.deps.Conversations.MarkMessagesRead(convID, entity.RoleAgent); err != nil {
		return nil, nil, err
	}
	messages, err := c.deps.Messages.ListOrdered(convID)
	if err != nil {
		return nil, nil, err
	}
	conv.UnreadAgent = 0
	return conv, messages, nil
}

// AgentSend appends an agent-authored message, discarding any already-uploaded
// attachments if the append fails.
func (c *Core) AgentSend(convID primitive.ObjectID, agentID, content string, attachments []entity.Attachment) (entity.Message, error) {
	if _, err := c.deps.Conversations.Get(convID); err != nil {
		return entity.Message{}, err
	}

	msg, err := c.deps.Send(convID, entity.RoleAgent, agentID, content, attachments)
	if err != nil {
		c.discardAttachments(attachments)
		return entity.Message{}, err
	}
	return msg, nil
}

// UpdateStatus changes a conversation's lifecycle status.
func (c *Core) UpdateStatus(convID primitive.ObjectID, status string) error {
	return c.deps.Conversations.UpdateStatus(convID, status)
}

// AssignConversation sets or clears the assigned agent.
func (c *Core) AssignConversation(convID primitive.ObjectID, agentID string) error {
	return c.deps.Conversations.Assign(convID, agentID)
}

// SetTags replaces a conversation's tags.
func (c *Core) SetTags(convID primitive.ObjectID, tags []string) error {
	return c.deps.Conversations.SetTags(convID, tags)
}

// SetNotes replaces a conversation's internal notes.
func (c *Core) SetNotes(convID primitive.ObjectID, notes string) error {
	return c.deps.Conversations.SetNotes(convID, notes)
}

// SetPriority changes a conversation's priority label.
func (c *Core) SetPriority(convID primitive.ObjectID, priority string) error {
	return c.deps.Conversations.SetPriority(convID, priority)
}

// SetCategory changes a conversation's category label.
func (c *Core) SetCategory(convID primitive.ObjectID, category string) error {
	return c.deps.Conversations.SetCategory(convID, category)
}

// MarkRead resets the agent-owed unread state for a conversation.
func (c *Core) MarkRead(convID primitive.ObjectID) error {
	return c.deps.Conversations.MarkMessagesRead(convID, entity.RoleAgent)
}

// PurgeConversation hard-deletes a conversation, cascading to messages and
// attachment files. Explicit agent action only.
func (c *Core) PurgeConversation(convID primitive.ObjectID) error {
	messages, err := c.deps.Messages.ListOrdered(convID)
	if err == nil {
		for _, msg := range messages {
			c.discardAttachments(msg.Attachments)
		}
	}
	return c.deps.Conversations.Purge(convID)
}

// AgentRoster returns the currently connected agents.
func (c *Core) AgentRoster() []entity.PresenceRecord {
	return c.deps.Presence.Roster(entity.RoleAgent)
}

// AutoReplySettings returns the active auto-reply configuration.
func (c *Core) AutoReplySettings() entity.AutoReplySettings {
	return c.deps.AutoReply.Settings()
}

// SaveAutoReplySettings stores new auto-reply configuration. Already-armed
// timers keep the snapshot they were created with.
func (c *Core) SaveAutoReplySettings(settings entity.AutoReplySettings) error {
	if settings.DelaySeconds < 0 {
		return entity.ValidationError("delay must be >= 0")
	}
	if settings.Enabled && settings.Message == "" {
		return entity.ValidationError("auto-reply message must not be empty")
	}
	return c.settings.SaveAutoReplySettings(settings)
}

// SuggestReply drafts a reply for the agent from the conversation history.
func (c *Core) SuggestReply(convID primitive.ObjectID) (string, error) {
	if c.assistant == nil {
		return "", fmt.Errorf("assistant not configured")
	}
	conv, err := c.deps.Conversations.Get(convID)
	if err != nil {
		return "", err
	}
	history, err := c.deps.Messages.ListOrdered(convID)
	if err != nil {
		return "", err
	}
	return c.assistant.SuggestReply(conv.Subject, history)
}
