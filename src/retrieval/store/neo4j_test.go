package store

import (
	"context"
	"strings"
	"testing"
)

type fakeNeo4jCall struct {
	mode   Neo4jAccessMode
	query  string
	params map[string]any
}

type fakeNeo4jDriver struct {
	calls  []fakeNeo4jCall
	rows   []map[string]any
	closed bool
	mode   Neo4jAccessMode
	runErr error
}

func (d *fakeNeo4jDriver) NewSession(_ context.Context, cfg Neo4jSessionConfig) neo4jSession {
	d.mode = cfg.AccessMode
	return &fakeNeo4jSession{driver: d}
}

func (d *fakeNeo4jDriver) Close(context.Context) error {
	d.closed = true
	return nil
}

type fakeNeo4jSession struct {
	driver *fakeNeo4jDriver
}

func (s *fakeNeo4jSession) Run(_ context.Context, query string, params map[string]any) (neo4jResult, error) {
	s.driver.calls = append(s.driver.calls, fakeNeo4jCall{mode: s.driver.mode, query: query, params: params})
	if s.driver.runErr != nil {
		return nil, s.driver.runErr
	}
	return &fakeNeo4jResult{rows: s.driver.rows, idx: -1}, nil
}

func (s *fakeNeo4jSession) Close(context.Context) error { return nil }

type fakeNeo4jResult struct {
	rows []map[string]any
	idx  int
}

func (r *fakeNeo4jResult) Next(context.Context) bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeNeo4jResult) Record() neo4jRecord { return fakeNeo4jRecord(r.rows[r.idx]) }
func (r *fakeNeo4jResult) Err() error          { return nil }

type fakeNeo4jRecord map[string]any

func (r fakeNeo4jRecord) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

func TestNeo4jStoreUpsertSendsRows(t *testing.T) {
	driver := &fakeNeo4jDriver{}
	s, err := newNeo4jStore(driver, "neo4j")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = s.Upsert(context.Background(), []Chunk{
		{ID: "1", Collection: "papers", Source: "a.pdf", Page: "3", Text: "body", Embedding: []float32{0.5, 1}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(driver.calls) != 1 {
		t.Fatalf("expected one query, got %d", len(driver.calls))
	}
	call := driver.calls[0]
	if call.mode != AccessModeWrite {
		t.Fatalf("upsert should use a write session")
	}
	rows, ok := call.params["rows"].([]map[string]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("unexpected rows param: %#v", call.params["rows"])
	}
	if rows[0]["page"] != "3" || rows[0]["source"] != "a.pdf" {
		t.Fatalf("unexpected row: %#v", rows[0])
	}
	if emb, _ := rows[0]["embedding"].([]float64); len(emb) != 2 || emb[0] != 0.5 {
		t.Fatalf("embedding not converted: %#v", rows[0]["embedding"])
	}
}

func TestNeo4jStoreSearchDecodesRecords(t *testing.T) {
	driver := &fakeNeo4jDriver{rows: []map[string]any{
		{"id": "1", "source": "a.pdf", "page": "2", "text": "first", "score": 0.9},
		{"id": "2", "source": "b.pdf", "page": nil, "text": "second", "score": 0.4},
	}}
	s, _ := newNeo4jStore(driver, "")
	got, err := s.Search(context.Background(), "papers", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Source != "a.pdf" || got[0].Page != "2" || got[0].Score != 0.9 {
		t.Fatalf("unexpected first match: %#v", got[0])
	}
	if got[1].Page != "" || got[1].Collection != "papers" {
		t.Fatalf("unexpected second match: %#v", got[1])
	}
	call := driver.calls[0]
	if call.mode != AccessModeRead {
		t.Fatalf("search should use a read session")
	}
	if !strings.Contains(call.query, "db.index.vector.queryNodes") {
		t.Fatalf("expected vector index query, got %q", call.query)
	}
	if call.params["k"] != int64(2) || call.params["candidates"] != int64(20) {
		t.Fatalf("unexpected limits: %#v", call.params)
	}
}

func TestNeo4jStoreCreateSchemaRejectsBadDims(t *testing.T) {
	s, _ := newNeo4jStore(&fakeNeo4jDriver{}, "")
	if err := s.CreateSchema(context.Background(), 0); err == nil {
		t.Fatalf("expected error for zero dims")
	}
}

func TestNeo4jStoreCount(t *testing.T) {
	driver := &fakeNeo4jDriver{rows: []map[string]any{{"n": int64(7)}}}
	s, _ := newNeo4jStore(driver, "")
	n, err := s.Count(context.Background(), "papers")
	if err != nil || n != 7 {
		t.Fatalf("expected 7, got %d (%v)", n, err)
	}
	_ = s.Close(context.Background())
	if !driver.closed {
		t.Fatalf("expected driver to be closed")
	}
}

func TestNewNeo4jStoreRequiresDriver(t *testing.T) {
	if _, err := newNeo4jStore(nil, ""); err == nil {
		t.Fatalf("expected error for nil driver")
	}
}
