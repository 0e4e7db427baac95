package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps chunks in a pgvector-enabled table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (ps *PostgresStore) CreateSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("postgres: invalid embedding dimension %d", dims)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS research_chunks (
			id TEXT NOT NULL,
			collection TEXT NOT NULL,
			source TEXT NOT NULL,
			page TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			embedding vector(%d),
			PRIMARY KEY (collection, id)
		)`, dims),
		`CREATE INDEX IF NOT EXISTS idx_research_chunks_embedding ON research_chunks USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if _, err := ps.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: create schema: %w", err)
		}
	}
	return nil
}

func (ps *PostgresStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`INSERT INTO research_chunks (id, collection, source, page, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6::vector)
			ON CONFLICT (collection, id) DO UPDATE
			SET source = EXCLUDED.source, page = EXCLUDED.page,
			    content = EXCLUDED.content, embedding = EXCLUDED.embedding`,
			c.ID, c.Collection, c.Source, c.Page, c.Text, encodeVector(c.Embedding))
	}
	return ps.pool.SendBatch(ctx, batch).Close()
}

func (ps *PostgresStore) Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := ps.pool.Query(ctx, `SELECT id, source, page, content, embedding <=> $2::vector AS distance
		FROM research_chunks
		WHERE collection = $1
		ORDER BY distance
		LIMIT $3`, collection, encodeVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m := Match{Chunk: Chunk{Collection: collection}}
		var distance float64
		if err := rows.Scan(&m.ID, &m.Source, &m.Page, &m.Text, &distance); err != nil {
			return nil, err
		}
		m.Score = 1 - distance
		out = append(out, m)
	}
	return out, rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := ps.pool.QueryRow(ctx, `SELECT COUNT(*) FROM research_chunks WHERE collection = $1`, collection).Scan(&n)
	return n, err
}

func (ps *PostgresStore) Close(context.Context) error {
	ps.pool.Close()
	return nil
}

// encodeVector renders v in pgvector's text form, e.g. "[0.1,0.2]".
func encodeVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
