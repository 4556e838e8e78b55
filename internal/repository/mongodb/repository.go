package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const snapshotCollection = "inventory_snapshots"

// ErrNoSnapshot is returned when no snapshot has been stored yet.
var ErrNoSnapshot = errors.New("no inventory snapshot stored")

// Repository defines the interface for snapshot storage.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.InventorySnapshot) error
	LatestSnapshot(ctx context.Context) (*models.InventorySnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}

	_, err = repo.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taken_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshot stores one inventory snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.InventorySnapshot) error {
	if _, err := r.collection().InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert inventory snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recently taken snapshot.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context) (*models.InventorySnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "taken_at", Value: -1}})

	var snapshot models.InventorySnapshot
	err := r.collection().FindOne(ctx, bson.D{}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
