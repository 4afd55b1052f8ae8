package repository

import (
	"ShopDesk/entity"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const autoReplyKey = "auto-reply"

type settingsDoc struct {
	Key   string                   `bson:"key"`
	Value entity.AutoReplySettings `bson:"value"`
}

// GetAutoReplySettings loads the singleton auto-reply configuration.
// Returns ErrNotFound if it has never been saved.
func (m *MongoDB) GetAutoReplySettings() (entity.AutoReplySettings, error) {
	connection, err := m.connect()
	if err != nil {
		return entity.AutoReplySettings{}, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	var doc settingsDoc
	err = collection.FindOne(m.ctx, bson.D{{Key: "key", Value: autoReplyKey}}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.AutoReplySettings{}, entity.NotFoundError("settings", autoReplyKey)
		}
		return entity.AutoReplySettings{}, fmt.Errorf("mongodb find settings: %w", err)
	}

	return doc.Value, nil
}

// SaveAutoReplySettings upserts the singleton auto-reply configuration.
// Already-armed timers keep the snapshot they were created with.
func (m *MongoDB) SaveAutoReplySettings(settings entity.AutoReplySettings) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx,
		bson.D{{Key: "key", Value: autoReplyKey}},
		bson.D{{Key: "$set", Value: settingsDoc{Key: autoReplyKey, Value: settings}}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("mongodb save settings: %w", err)
	}
	return nil
}
