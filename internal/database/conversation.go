package repository

import (
	"ShopDesk/entity"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertConversation persists a new conversation record.
func (m *MongoDB) InsertConversation(conv entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	_, err = collection.InsertOne(m.ctx, conv)
	if err != nil {
		return fmt.Errorf("mongodb insert conversation: %w", err)
	}
	return nil
}

// GetConversation returns a conversation by id.
func (m *MongoDB) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&conv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, entity.NotFoundError("conversation", id.Hex())
		}
		return nil, fmt.Errorf("mongodb find conversation: %w", err)
	}
	return &conv, nil
}

// ListConversations returns all conversations, most recently updated first.
func (m *MongoDB) ListConversations() ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err = cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}

	return conversations, nil
}

// updateConversation applies a partial update and bumps updated_at.
func (m *MongoDB) updateConversation(id primitive.ObjectID, set bson.D) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	set = append(set, bson.E{Key: "updated_at", Value: time.Now()})
	result, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("mongodb update conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.NotFoundError("conversation", id.Hex())
	}
	return nil
}

// SetConversationStatus changes the lifecycle status.
func (m *MongoDB) SetConversationStatus(id primitive.ObjectID, status string) error {
	return m.updateConversation(id, bson.D{{Key: "status", Value: status}})
}

// SetConversationAssignee assigns the conversation to an agent; empty unassigns.
func (m *MongoDB) SetConversationAssignee(id primitive.ObjectID, agentID string) error {
	return m.updateConversation(id, bson.D{{Key: "assigned_to", Value: agentID}})
}

// SetConversationTags replaces the conversation's tag list.
func (m *MongoDB) SetConversationTags(id primitive.ObjectID, tags []string) error {
	return m.updateConversation(id, bson.D{{Key: "tags", Value: tags}})
}

// SetConversationNotes replaces the conversation's internal notes.
func (m *MongoDB) SetConversationNotes(id primitive.ObjectID, notes string) error {
	return m.updateConversation(id, bson.D{{Key: "notes", Value: notes}})
}

// SetConversationPriority changes the priority label.
func (m *MongoDB) SetConversationPriority(id primitive.ObjectID, priority string) error {
	return m.updateConversation(id, bson.D{{Key: "priority", Value: priority}})
}

// SetConversationCategory changes the category label.
func (m *MongoDB) SetConversationCategory(id primitive.ObjectID, category string) error {
	return m.updateConversation(id, bson.D{{Key: "category", Value: category}})
}

// TouchConversation records the latest message preview and bumps updated_at.
func (m *MongoDB) TouchConversation(id primitive.ObjectID, lastMessage string) error {
	return m.updateConversation(id, bson.D{{Key: "last_message", Value: lastMessage}})
}

// IncrementUnread adds delta to the unread counter owed to the given reader role.
func (m *MongoDB) IncrementUnread(id primitive.ObjectID, role string, delta int) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	field := unreadField(role)
	result, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: field, Value: delta}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		},
	)
	if err != nil {
		return fmt.Errorf("mongodb increment unread: %w", err)
	}
	if result.MatchedCount == 0 {
		return entity.NotFoundError("conversation", id.Hex())
	}
	return nil
}

// ResetUnread zeroes the unread counter owed to the given reader role.
func (m *MongoDB) ResetUnread(id primitive.ObjectID, role string) error {
	return m.updateConversation(id, bson.D{{Key: unreadField(role), Value: 0}})
}

func unreadField(role string) string {
	if role == entity.RoleAgent {
		return "unread_agent"
	}
	return "unread_customer"
}

// DeleteConversation removes the conversation record. The caller cascades
// the message and attachment deletes.
func (m *MongoDB) DeleteConversation(id primitive.ObjectID) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	result, err := collection.DeleteOne(m.ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("mongodb delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return entity.NotFoundError("conversation", id.Hex())
	}
	return nil
}

// EnsureConversationIndexes creates indexes for the conversations collection.
func (m *MongoDB) EnsureConversationIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
	}

	_, err = collection.Indexes().CreateMany(m.ctx, indexes)
	if err != nil {
		return fmt.Errorf("mongodb create conversation indexes: %w", err)
	}

	return nil
}
