package repository

import (
	"ShopDesk/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertMessage appends a chat message. Messages are never edited afterwards
// except for the read flag.
func (m *MongoDB) InsertMessage(msg entity.Message) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	_, err = collection.InsertOne(m.ctx, msg)
	if err != nil {
		return fmt.Errorf("mongodb insert message: %w", err)
	}
	return nil
}

// ListMessages returns all messages of a conversation in creation order.
func (m *MongoDB) ListMessages(convID primitive.ObjectID) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{{Key: "conversation_id", Value: convID}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find messages: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err = cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}

	return messages, nil
}

// MarkMessagesRead flips is_read on every unread message authored by authorRole.
// Returns the number of messages flipped; idempotent.
func (m *MongoDB) MarkMessagesRead(convID primitive.ObjectID, authorRole string) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "conversation_id", Value: convID},
		{Key: "sender", Value: authorRole},
		{Key: "is_read", Value: false},
	}
	result, err := collection.UpdateMany(m.ctx, filter, bson.D{{Key: "$set", Value: bson.D{{Key: "is_read", Value: true}}}})
	if err != nil {
		return 0, fmt.Errorf("mongodb mark messages read: %w", err)
	}

	return result.ModifiedCount, nil
}

// DeleteMessages removes every message of a conversation (administrative purge cascade).
func (m *MongoDB) DeleteMessages(convID primitive.ObjectID) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	_, err = collection.DeleteMany(m.ctx, bson.D{{Key: "conversation_id", Value: convID}})
	if err != nil {
		return fmt.Errorf("mongodb delete messages: %w", err)
	}
	return nil
}

// EnsureMessageIndexes creates indexes for the messages collection.
func (m *MongoDB) EnsureMessageIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	index := mongo.IndexModel{
		Keys: bson.D{
			{Key: "conversation_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	}

	_, err = collection.Indexes().CreateOne(m.ctx, index)
	if err != nil {
		return fmt.Errorf("mongodb create message index: %w", err)
	}

	return nil
}
