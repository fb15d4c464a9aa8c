package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/kafaat/sahool-sensors/internal/domain"
)

const readingsCollection = "sensor_readings"

// MongoReadingStore persists raw readings in a time-series collection and
// serves the raw windows the aggregation and health paths compute from.
type MongoReadingStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoConnection(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = client.Ping(ctx, readpref.Primary())

	return client, nil
}

func NewMongoReadingStore(client *mongo.Client, database string) (*MongoReadingStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db := client.Database(database)

	tsOptions := options.CreateCollection().SetTimeSeriesOptions(
		options.TimeSeries().
			SetTimeField("timestamp").
			SetMetaField("device_id").
			SetGranularity("minutes"),
	)

	db.CreateCollection(ctx, readingsCollection, tsOptions)
	collection := db.Collection(readingsCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "device_id", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "field_id", Value: 1},
				{Key: "sensor_type", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
	}
	collection.Indexes().CreateMany(ctx, indexModels)

	return &MongoReadingStore{
		client:     client,
		db:         db,
		collection: collection,
	}, nil
}

func (m *MongoReadingStore) InsertBatch(ctx context.Context, data []domain.SensorReading) error {
	if len(data) == 0 {
		return nil
	}

	docs := make([]interface{}, len(data))
	for i, d := range data {
		docs[i] = d
	}

	opts := options.InsertMany().SetOrdered(false)
	_, err := m.collection.InsertMany(ctx, docs, opts)
	return err
}

func (m *MongoReadingStore) GetReadings(ctx context.Context, query domain.ReadingQuery) ([]domain.SensorReading, error) {
	filter := bson.M{
		"timestamp": bson.M{
			"$gte": query.StartTime,
			"$lte": query.EndTime,
		},
	}
	if query.DeviceID != "" {
		filter["device_id"] = query.DeviceID
	}
	if query.FieldID != "" {
		filter["field_id"] = query.FieldID
	}
	if query.SensorType != "" {
		filter["sensor_type"] = query.SensorType
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer cursor.Close(ctx)

	var readings []domain.SensorReading
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("failed to decode readings: %w", err)
	}

	return readings, nil
}

func (m *MongoReadingStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
