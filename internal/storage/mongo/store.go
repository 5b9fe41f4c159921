package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/UkralStul/academic-feed/internal/storage"
)

const collectionName = "kv"

type document struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store реализует интерфейс Storage поверх коллекции MongoDB.
type Store struct {
	client *mongo.Client
	kv     *mongo.Collection
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, uri, database string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Store{
		client: client,
		kv:     client.Database(database).Collection(collectionName),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := s.kv.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	doc := document{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := s.kv.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.kv.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
