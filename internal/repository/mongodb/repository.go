package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

const (
	snapshotCollection = "app_data"
	summaryCollection  = "weekly_summaries"
	snapshotID         = "current"
)

// snapshotDocument wraps the application state in a single upserted document.
type snapshotDocument struct {
	ID        string         `bson:"_id"`
	Data      models.AppData `bson:"data"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// MongoDBRepository persists the application snapshot and the weekly summaries.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	now    func() time.Time
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		now:    time.Now,
	}, nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Load returns the stored snapshot; found is false before the first save.
func (r *MongoDBRepository) Load(ctx context.Context) (models.AppData, bool, error) {
	var doc snapshotDocument
	err := r.collection(snapshotCollection).FindOne(ctx, bson.M{"_id": snapshotID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AppData{}, false, nil
	}
	if err != nil {
		return models.AppData{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return doc.Data, true, nil
}

// Save replaces the stored snapshot.
func (r *MongoDBRepository) Save(ctx context.Context, data models.AppData) error {
	doc := snapshotDocument{ID: snapshotID, Data: data, UpdatedAt: r.now().UTC()}
	_, err := r.collection(snapshotCollection).ReplaceOne(ctx,
		bson.M{"_id": snapshotID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SaveWeeklySummary stores one weekly report, replacing an earlier run for the same week.
func (r *MongoDBRepository) SaveWeeklySummary(ctx context.Context, summary models.WeeklySummary) error {
	_, err := r.collection(summaryCollection).ReplaceOne(ctx,
		bson.M{"week_start": summary.WeekStart}, summary, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert weekly summary: %w", err)
	}
	return nil
}

// WeeklySummaries returns the most recent summaries, newest first.
func (r *MongoDBRepository) WeeklySummaries(ctx context.Context, limit int64) ([]models.WeeklySummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "week_start", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection(summaryCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly summaries: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.WeeklySummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode weekly summaries: %w", err)
	}
	return summaries, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
