// Package store holds the vector-store backends behind the retrieval
// pipeline. Every backend scopes chunks by collection name so one database
// can serve several corpora.
package store

import (
	"context"
	"math"
)

// Chunk is one indexed slice of a source document.
type Chunk struct {
	ID         string    `json:"id" bson:"_id"`
	Collection string    `json:"collection" bson:"collection"`
	Source     string    `json:"source" bson:"source"`
	Page       string    `json:"page,omitempty" bson:"page,omitempty"`
	Text       string    `json:"text" bson:"text"`
	Embedding  []float32 `json:"-" bson:"-"`
}

// Match is a chunk returned by a similarity search, best first.
type Match struct {
	Chunk
	Score float64
}

// VectorStore persists chunk embeddings and answers nearest-neighbour
// queries within a collection.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error)
	Count(ctx context.Context, collection string) (int, error)
}

// SchemaInitializer is implemented by stores that need tables or indexes
// created before first use.
type SchemaInitializer interface {
	CreateSchema(ctx context.Context, dims int) error
}

// Closer is implemented by stores holding a connection.
type Closer interface {
	Close(ctx context.Context) error
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
