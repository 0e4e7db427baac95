package store

import (
	"context"
	"errors"
	"fmt"
)

// Neo4jVectorIndex is the vector index name over (:Chunk).embedding.
const Neo4jVectorIndex = "research_chunk_embeddings"

// Neo4jAccessMode mirrors the driver's session access modes.
type Neo4jAccessMode int

const (
	AccessModeWrite Neo4jAccessMode = iota
	AccessModeRead
)

// Neo4jSessionConfig is the subset of session options the store uses.
type Neo4jSessionConfig struct {
	AccessMode   Neo4jAccessMode
	DatabaseName string
}

// The store talks to Neo4j through these narrow interfaces so tests can
// substitute an in-process fake for the official driver.
type neo4jDriver interface {
	NewSession(ctx context.Context, config Neo4jSessionConfig) neo4jSession
	Close(ctx context.Context) error
}

type neo4jSession interface {
	Run(ctx context.Context, query string, params map[string]any) (neo4jResult, error)
	Close(ctx context.Context) error
}

type neo4jResult interface {
	Next(ctx context.Context) bool
	Record() neo4jRecord
	Err() error
}

type neo4jRecord interface {
	Get(key string) (any, bool)
}

// Neo4jStore keeps chunks as (:Chunk) nodes linked to their (:Source).
type Neo4jStore struct {
	driver   neo4jDriver
	database string
}

func newNeo4jStore(driver neo4jDriver, database string) (*Neo4jStore, error) {
	if driver == nil {
		return nil, errors.New("neo4j: driver is required")
	}
	return &Neo4jStore{driver: driver, database: database}, nil
}

func (s *Neo4jStore) run(ctx context.Context, mode Neo4jAccessMode, query string, params map[string]any, each func(neo4jRecord) error) error {
	session := s.driver.NewSession(ctx, Neo4jSessionConfig{AccessMode: mode, DatabaseName: s.database})
	defer session.Close(ctx)

	res, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	for res.Next(ctx) {
		if each == nil {
			continue
		}
		if err := each(res.Record()); err != nil {
			return err
		}
	}
	return res.Err()
}

func (s *Neo4jStore) CreateSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("neo4j: invalid embedding dimension %d", dims)
	}
	stmts := []string{
		`CREATE CONSTRAINT research_chunk_key IF NOT EXISTS FOR (c:Chunk) REQUIRE (c.collection, c.id) IS UNIQUE`,
		fmt.Sprintf("CREATE VECTOR INDEX %s IF NOT EXISTS FOR (c:Chunk) ON (c.embedding) "+
			"OPTIONS {indexConfig: {`vector.dimensions`: %d, `vector.similarity_function`: 'cosine'}}", Neo4jVectorIndex, dims),
	}
	for _, stmt := range stmts {
		if err := s.run(ctx, AccessModeWrite, stmt, nil, nil); err != nil {
			return fmt.Errorf("neo4j: create schema: %w", err)
		}
	}
	return nil
}

func (s *Neo4jStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, map[string]any{
			"id":         c.ID,
			"collection": c.Collection,
			"source":     c.Source,
			"page":       c.Page,
			"text":       c.Text,
			"embedding":  toFloat64(c.Embedding),
		})
	}
	const query = `UNWIND $rows AS row
MERGE (c:Chunk {collection: row.collection, id: row.id})
SET c.source = row.source, c.page = row.page, c.text = row.text, c.embedding = row.embedding
MERGE (s:Source {collection: row.collection, name: row.source})
MERGE (c)-[:FROM]->(s)`
	return s.run(ctx, AccessModeWrite, query, map[string]any{"rows": rows}, nil)
}

func (s *Neo4jStore) Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	// The index spans every collection, so oversample before filtering.
	const query = `CALL db.index.vector.queryNodes($index, $candidates, $embedding) YIELD node, score
WHERE node.collection = $collection
RETURN node.id AS id, node.source AS source, node.page AS page, node.text AS text, score
ORDER BY score DESC
LIMIT $k`
	params := map[string]any{
		"index":      Neo4jVectorIndex,
		"candidates": int64(k * 10),
		"embedding":  toFloat64(embedding),
		"collection": collection,
		"k":          int64(k),
	}
	var out []Match
	err := s.run(ctx, AccessModeRead, query, params, func(rec neo4jRecord) error {
		if rec == nil {
			return nil
		}
		m := Match{Chunk: Chunk{Collection: collection}}
		m.ID = recordString(rec, "id")
		m.Source = recordString(rec, "source")
		m.Page = recordString(rec, "page")
		m.Text = recordString(rec, "text")
		if v, ok := rec.Get("score"); ok {
			if f, ok := v.(float64); ok {
				m.Score = f
			}
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (s *Neo4jStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.run(ctx, AccessModeRead, `MATCH (c:Chunk {collection: $collection}) RETURN count(c) AS n`,
		map[string]any{"collection": collection}, func(rec neo4jRecord) error {
			if rec == nil {
				return nil
			}
			if v, ok := rec.Get("n"); ok {
				if i, ok := v.(int64); ok {
					n = int(i)
				}
			}
			return nil
		})
	return n, err
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func recordString(rec neo4jRecord, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
