package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Protocol-Lattice/research-agent/src/agents"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id string, started time.Time) *agents.Record {
	return &agents.Record{
		ID:      id,
		Query:   "effects of X on Y",
		Status:  agents.StatusSuccess,
		Report:  "report body",
		Sources: []agents.Citation{{Source: "a.pdf", Page: "3"}},
		Results: map[agents.Role]agents.Result{
			agents.RoleResearcher: {Agent: "RESEARCHER", Status: agents.StatusSuccess, Findings: []string{"- f1"}},
		},
		Workflow:   []agents.LogEntry{{Step: 1, Agent: "RESEARCHER", Status: agents.StatusSuccess}},
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, sampleRecord("run-1", started)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Report != "report body" || got.Sources[0].Page != "3" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Results[agents.RoleResearcher].Findings[0] != "- f1" {
		t.Fatalf("results not restored: %+v", got.Results)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at mismatch: %v", got.StartedAt)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("run-1", time.Now())
	_ = s.Save(ctx, rec)

	rec.Status = agents.StatusError
	rec.Error = "REVIEWER agent failed: boom"
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("resave: %v", err)
	}
	list, _ := s.List(ctx, 0)
	if len(list) != 1 || list[0].Status != agents.StatusError || list[0].Error != rec.Error {
		t.Fatalf("unexpected list after replace: %+v", list)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Save(ctx, sampleRecord(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if !list[0].StartedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("unexpected started_at: %v", list[0].StartedAt)
	}
}

func TestSaveRequiresID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(context.Background(), &agents.Record{}); err == nil {
		t.Fatalf("expected error for record without id")
	}
}
