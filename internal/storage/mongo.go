package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const settingsCollection = "app_settings"

type settingDoc struct {
	Key       string `bson:"_id"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updatedAt"`
}

// MongoSettingsStore keeps settings as one document per key.
type MongoSettingsStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSettingsStore connects to uri and uses the app_settings collection
// of database dbName.
func NewMongoSettingsStore(ctx context.Context, uri, dbName string) (*MongoSettingsStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSettingsStore{
		client: client,
		coll:   client.Database(dbName).Collection(settingsCollection),
	}, nil
}

func (s *MongoSettingsStore) Get(ctx context.Context, key string) (string, error) {
	var doc settingDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return doc.Value, nil
}

func (s *MongoSettingsStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now().UnixNano()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *MongoSettingsStore) Remove(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("remove setting %s: %w", key, err)
	}
	return nil
}

func (s *MongoSettingsStore) Fingerprint(ctx context.Context) (string, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return "", fmt.Errorf("settings fingerprint: %w", err)
	}
	var latest settingDoc
	err = s.coll.FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})).Decode(&latest)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("settings fingerprint: %w", err)
	}
	return fmt.Sprintf("%d:%d", count, latest.UpdatedAt), nil
}

func (s *MongoSettingsStore) Close() error {
	return s.client.Disconnect(context.Background())
}
