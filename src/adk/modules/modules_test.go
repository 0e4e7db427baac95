package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/adk"
	"github.com/Protocol-Lattice/research-agent/src/agents"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/store"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{"", "memory", "MEMORY"} {
		vs, err := OpenStore(ctx, config.StoreConfig{Backend: backend})
		if err != nil {
			t.Fatalf("%q: %v", backend, err)
		}
		if _, ok := vs.(*store.MemoryStore); !ok {
			t.Fatalf("%q: expected memory store, got %T", backend, vs)
		}
	}
	if _, err := OpenStore(ctx, config.StoreConfig{Backend: "postgres"}); err == nil {
		t.Fatalf("postgres without uri should fail")
	}
	if _, err := OpenStore(ctx, config.StoreConfig{Backend: "neo4j"}); err == nil {
		t.Fatalf("neo4j without uri should fail")
	}
	if vs, err := OpenStore(ctx, config.StoreConfig{Backend: "qdrant", Table: "papers"}); err != nil {
		t.Fatalf("qdrant: %v", err)
	} else if _, ok := vs.(*store.QdrantStore); !ok {
		t.Fatalf("expected qdrant store, got %T", vs)
	}
	if _, err := OpenStore(ctx, config.StoreConfig{Backend: "redis"}); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestLLMProviderSharesCache(t *testing.T) {
	dir := t.TempDir()
	provider := LLMProvider(
		config.LLMConfig{Provider: "dummy"},
		config.CacheConfig{Size: 8, Path: filepath.Join(dir, "cache.json")},
	)
	ctx := context.Background()
	a, err := provider(ctx, agents.RoleResearcher, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := provider(ctx, agents.RoleReviewer, 0.3)
	ca, ok := a.(*models.CachedLLM)
	if !ok {
		t.Fatalf("expected cached generator, got %T", a)
	}
	cb := b.(*models.CachedLLM)
	if ca.Cache != cb.Cache {
		t.Fatalf("roles should share one cache")
	}
	if _, err := a.Generate(ctx, "sys", "prompt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache.json")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
}

func TestLLMProviderRejectsUnknownProvider(t *testing.T) {
	provider := LLMProvider(config.LLMConfig{Provider: "nope"}, config.CacheConfig{})
	if _, err := provider(context.Background(), agents.RoleResearcher, 0.2); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("RESEARCH_LLM_CACHE_SIZE", "")
	ctx := context.Background()
	k := 2
	temp := 0.8
	cfg := &config.Config{
		LLM:       config.LLMConfig{Provider: "dummy"},
		Agents:    map[string]config.AgentConfig{"questioner": {K: &k, Temperature: &temp}},
		Retrieval: config.RetrievalConfig{Collection: "papers", EmbedProvider: "dummy"},
		History:   config.HistoryConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "h.db")},
	}
	opts, err := FromConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	kit, err := adk.New(ctx, opts...)
	if err != nil {
		t.Fatalf("new kit: %v", err)
	}
	defer kit.Close(ctx)

	if len(kit.Modules()) != 3 {
		t.Fatalf("expected model, retrieval and history modules, got %d", len(kit.Modules()))
	}
	sys, err := kit.BuildSystem(ctx)
	if err != nil {
		t.Fatalf("build system: %v", err)
	}
	questioner := sys.Agents()[3].(interface{ K() int })
	if questioner.K() != 2 {
		t.Fatalf("expected questioner k=2, got %d", questioner.K())
	}

	// The store is empty, so the run stops at the researcher.
	rec := sys.Run(ctx, "anything")
	if rec.Status != research.StatusError || len(rec.Workflow) != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
