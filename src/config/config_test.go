package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("expected default model gemini-2.5-flash, got %s", cfg.LLM.Model)
	}
	if cfg.Retrieval.Collection != "research_documents" {
		t.Errorf("expected collection research_documents, got %s", cfg.Retrieval.Collection)
	}
	if cfg.Output.ReportPath != "research_report.txt" {
		t.Errorf("expected report path research_report.txt, got %s", cfg.Output.ReportPath)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Ingest)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("expected cache ttl 24h, got %v", cfg.Cache.TTL)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESEARCH_CONFIG", "/nonexistent/research.yaml")
	t.Setenv("RESEARCH_MODEL", "gpt-4o-mini")
	t.Setenv("RESEARCH_PROVIDER", "openai")
	t.Setenv("RESEARCH_TEMPERATURE", "0.7")
	t.Setenv("RESEARCH_STORE_BACKEND", "postgres")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Provider != "openai" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if got := cfg.Temperature("reviewer", 0.3); got != 0.7 {
		t.Errorf("expected global temperature 0.7, got %v", got)
	}
	if cfg.Retrieval.Store.Backend != "postgres" {
		t.Errorf("expected postgres backend, got %s", cfg.Retrieval.Store.Backend)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "research.yaml")
	content := `
llm:
  provider: anthropic
  model: claude-sonnet-4-5
agents:
  reviewer:
    temperature: 0.1
    k: 3
  formatter:
    k: 0
retrieval:
  collection: ${TEST_COLLECTION}
  store:
    backend: mongodb
    uri: mongodb://localhost:27017
cache:
  size: 64
  ttl: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESEARCH_CONFIG", path)
	t.Setenv("TEST_COLLECTION", "papers")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected provider anthropic, got %s", cfg.LLM.Provider)
	}
	if cfg.Retrieval.Collection != "papers" {
		t.Errorf("expected expanded collection papers, got %s", cfg.Retrieval.Collection)
	}
	if got := cfg.Temperature("reviewer", 0.3); got != 0.1 {
		t.Errorf("expected reviewer temperature 0.1, got %v", got)
	}
	if got := cfg.Temperature("synthesizer", 0.4); got != 0.4 {
		t.Errorf("expected fallback 0.4, got %v", got)
	}
	if k, ok := cfg.K("reviewer"); !ok || k != 3 {
		t.Errorf("expected reviewer k 3, got %d (%v)", k, ok)
	}
	if k, ok := cfg.K("formatter"); !ok || k != 0 {
		t.Errorf("expected explicit formatter k 0, got %d (%v)", k, ok)
	}
	if _, ok := cfg.K("researcher"); ok {
		t.Errorf("researcher k should be unset")
	}
	if cfg.Cache.Size != 64 || cfg.Cache.TTL != time.Hour {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	// Unset sections keep their defaults.
	if cfg.Ingest.ChunkSize != 1000 {
		t.Errorf("expected default chunk size, got %d", cfg.Ingest.ChunkSize)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RESEARCH_COLLECTION=from_dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RESEARCH_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("RESEARCH_COLLECTION", "")
	os.Unsetenv("RESEARCH_COLLECTION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retrieval.Collection != "from_dotenv" {
		t.Errorf("expected collection from .env, got %s", cfg.Retrieval.Collection)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Retrieval.Store.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = defaults()
	neg := -2
	cfg.Agents = map[string]AgentConfig{"reviewer": {K: &neg}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative k")
	}

	cfg = defaults()
	cfg.Ingest.ChunkOverlap = cfg.Ingest.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for overlap >= chunk size")
	}
}

func TestSetTemperatureReplacesAgentValues(t *testing.T) {
	reviewer, k := 0.9, 4
	cfg := defaults()
	cfg.Agents = map[string]AgentConfig{
		"reviewer":   {Temperature: &reviewer},
		"questioner": {K: &k},
	}

	cfg.SetTemperature(0.1)

	for _, role := range []string{"researcher", "reviewer", "questioner"} {
		if got := cfg.Temperature(role, 0.5); got != 0.1 {
			t.Errorf("%s: expected 0.1, got %v", role, got)
		}
	}
	if reviewer != 0.9 {
		t.Errorf("caller's value was modified: %v", reviewer)
	}
	if got, ok := cfg.K("questioner"); !ok || got != 4 {
		t.Errorf("per-agent k should survive, got %d %v", got, ok)
	}
}
