package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps chunks in process memory. It is the default backend
// for tests and single-run CLI sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]map[string]Chunk // collection -> id -> chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]map[string]Chunk)}
}

func (s *MemoryStore) Upsert(_ context.Context, chunks []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		coll := s.chunks[c.Collection]
		if coll == nil {
			coll = make(map[string]Chunk)
			s.chunks[c.Collection] = coll
		}
		c.Embedding = append([]float32(nil), c.Embedding...)
		coll[c.ID] = c
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	matches := make([]Match, 0, len(s.chunks[collection]))
	for _, c := range s.chunks[collection] {
		matches = append(matches, Match{Chunk: c, Score: CosineSimilarity(embedding, c.Embedding)})
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks[collection]), nil
}
