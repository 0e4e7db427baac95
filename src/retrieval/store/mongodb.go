package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVectorIndex is the Atlas Search index name queried by $vectorSearch.
// The index must map "embedding" as a vector field and "collection" as a
// filter field; Atlas search indexes are created outside the driver.
const MongoVectorIndex = "research_vector_index"

// MongoStore keeps chunks in a MongoDB Atlas collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoChunk struct {
	ID         string    `bson:"_id"`
	Collection string    `bson:"collection"`
	Source     string    `bson:"source"`
	Page       string    `bson:"page,omitempty"`
	Text       string    `bson:"text"`
	Embedding  []float64 `bson:"embedding"`
	Score      float64   `bson:"score,omitempty"`
}

func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongodb: uri is required")
	}
	if database == "" {
		database = "research"
	}
	if collection == "" {
		collection = "chunks"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return &MongoStore{client: client, collection: client.Database(database).Collection(collection)}, nil
}

func (ms *MongoStore) CreateSchema(ctx context.Context, _ int) error {
	_, err := ms.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "collection", Value: 1}, {Key: "source", Value: 1}},
	})
	return err
}

func (ms *MongoStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(chunks))
	for _, c := range chunks {
		doc := mongoChunk{
			ID:         c.Collection + "/" + c.ID,
			Collection: c.Collection,
			Source:     c.Source,
			Page:       c.Page,
			Text:       c.Text,
			Embedding:  toFloat64(c.Embedding),
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	_, err := ms.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

func (ms *MongoStore) Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: MongoVectorIndex},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: toFloat64(embedding)},
			{Key: "numCandidates", Value: int64(k * 10)},
			{Key: "limit", Value: int64(k)},
			{Key: "filter", Value: bson.D{{Key: "collection", Value: collection}}},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}
	cursor, err := ms.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []Match
	for cursor.Next(ctx) {
		var doc mongoChunk
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.match())
	}
	return out, cursor.Err()
}

func (ms *MongoStore) Count(ctx context.Context, collection string) (int, error) {
	n, err := ms.collection.CountDocuments(ctx, bson.M{"collection": collection})
	return int(n), err
}

func (ms *MongoStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

func (d mongoChunk) match() Match {
	id := d.ID
	if prefix := d.Collection + "/"; len(id) > len(prefix) && id[:len(prefix)] == prefix {
		id = id[len(prefix):]
	}
	return Match{
		Chunk: Chunk{
			ID:         id,
			Collection: d.Collection,
			Source:     d.Source,
			Page:       d.Page,
			Text:       d.Text,
			Embedding:  toFloat32(d.Embedding),
		},
		Score: d.Score,
	}
}
