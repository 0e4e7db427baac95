package store

import (
	"context"
	"testing"
)

func TestMemoryStoreSearchRanksByCosine(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.Upsert(ctx, []Chunk{
		{ID: "a", Collection: "papers", Source: "a.pdf", Text: "exact", Embedding: []float32{1, 0}},
		{ID: "b", Collection: "papers", Source: "b.pdf", Text: "close", Embedding: []float32{0.8, 0.2}},
		{ID: "c", Collection: "papers", Source: "c.pdf", Text: "orthogonal", Embedding: []float32{0, 1}},
		{ID: "d", Collection: "other", Source: "d.pdf", Text: "wrong collection", Embedding: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Search(ctx, "papers", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("scores not descending: %f < %f", got[0].Score, got[1].Score)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Upsert(ctx, []Chunk{{ID: "a", Collection: "c", Text: "old", Embedding: []float32{1}}})
	_ = s.Upsert(ctx, []Chunk{{ID: "a", Collection: "c", Text: "new", Embedding: []float32{1}}})

	n, _ := s.Count(ctx, "c")
	if n != 1 {
		t.Fatalf("expected 1 chunk after replace, got %d", n)
	}
	got, _ := s.Search(ctx, "c", []float32{1}, 1)
	if got[0].Text != "new" {
		t.Fatalf("expected replaced text, got %q", got[0].Text)
	}
}

func TestMemoryStoreZeroK(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Upsert(context.Background(), []Chunk{{ID: "a", Collection: "c", Embedding: []float32{1}}})
	got, err := s.Search(context.Background(), "c", []float32{1}, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no matches for k=0, got %v (%v)", got, err)
	}
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	if CosineSimilarity([]float32{1, 2}, []float32{1}) != 0 {
		t.Fatalf("mismatched lengths should score 0")
	}
	if CosineSimilarity([]float32{0, 0}, []float32{1, 0}) != 0 {
		t.Fatalf("zero vector should score 0")
	}
}

func TestEncodeVector(t *testing.T) {
	if got := encodeVector([]float32{0.5, -1, 2}); got != "[0.5,-1,2]" {
		t.Fatalf("unexpected pgvector literal %q", got)
	}
	if got := encodeVector(nil); got != "[]" {
		t.Fatalf("unexpected empty literal %q", got)
	}
}
