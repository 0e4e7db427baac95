// Package config loads the research workflow configuration from a YAML
// file, an optional .env file and RESEARCH_* environment overrides, in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       LLMConfig              `yaml:"llm"`
	Agents    map[string]AgentConfig `yaml:"agents"`
	Retrieval RetrievalConfig        `yaml:"retrieval"`
	Ingest    IngestConfig           `yaml:"ingest"`
	History   HistoryConfig          `yaml:"history"`
	Cache     CacheConfig            `yaml:"cache"`
	Output    OutputConfig           `yaml:"output"`
	LogLevel  string                 `yaml:"log_level"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	// Temperature, when set, replaces every role's default.
	Temperature *float64 `yaml:"temperature"`
}

// AgentConfig overrides one role; keys are role names such as "reviewer".
type AgentConfig struct {
	Temperature *float64 `yaml:"temperature"`
	K           *int     `yaml:"k"`
}

type RetrievalConfig struct {
	Collection    string      `yaml:"collection"`
	EmbedProvider string      `yaml:"embed_provider"`
	EmbedModel    string      `yaml:"embed_model"`
	Synthesize    bool        `yaml:"synthesize"`
	Store         StoreConfig `yaml:"store"`
}

// StoreConfig selects the vector store. Backend is one of memory, postgres,
// mongodb, neo4j or qdrant.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	APIKey   string `yaml:"api_key"`
}

type IngestConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	Workers      int      `yaml:"workers"`
	Extensions   []string `yaml:"extensions"`
	// Dirs are ingested before a run when the store starts empty.
	Dirs []string `yaml:"dirs"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
	Path string        `yaml:"path"`
}

type OutputConfig struct {
	ReportPath string `yaml:"report_path"`
}

func defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Retrieval: RetrievalConfig{
			Collection:    "research_documents",
			EmbedProvider: "dummy",
			Store:         StoreConfig{Backend: "memory"},
		},
		Ingest: IngestConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Workers:      4,
			Extensions:   []string{".txt", ".md"},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "data/research.db",
		},
		Cache: CacheConfig{
			TTL:  24 * time.Hour,
			Path: ".research_cache.json",
		},
		Output: OutputConfig{
			ReportPath: "research_report.txt",
		},
		LogLevel: "info",
	}
}

// Load reads RESEARCH_CONFIG (default config/research.yaml). A missing file
// leaves the defaults in place.
func Load() (*Config, error) {
	// .env only fills variables the environment does not already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	path := os.Getenv("RESEARCH_CONFIG")
	if path == "" {
		path = "config/research.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RESEARCH_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("RESEARCH_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("RESEARCH_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.Temperature = &f
		}
	}
	if v := os.Getenv("RESEARCH_COLLECTION"); v != "" {
		cfg.Retrieval.Collection = v
	}
	if v := os.Getenv("RESEARCH_EMBED_PROVIDER"); v != "" {
		cfg.Retrieval.EmbedProvider = v
	}
	if v := os.Getenv("RESEARCH_EMBED_MODEL"); v != "" {
		cfg.Retrieval.EmbedModel = v
	}
	if v := os.Getenv("RESEARCH_STORE_BACKEND"); v != "" {
		cfg.Retrieval.Store.Backend = v
	}
	if v := os.Getenv("RESEARCH_STORE_URI"); v != "" {
		cfg.Retrieval.Store.URI = v
	}
	if v := os.Getenv("RESEARCH_HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := os.Getenv("RESEARCH_REPORT_PATH"); v != "" {
		cfg.Output.ReportPath = v
	}
	if v := os.Getenv("RESEARCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Retrieval.Store.Backend) {
	case "", "memory", "postgres", "mongodb", "neo4j", "qdrant":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Retrieval.Store.Backend)
	}
	for role, a := range c.Agents {
		if a.K != nil && *a.K < 0 {
			return fmt.Errorf("config: agents.%s.k must be >= 0", role)
		}
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize && c.Ingest.ChunkSize > 0 {
		return fmt.Errorf("config: ingest.chunk_overlap must be smaller than chunk_size")
	}
	return nil
}

// Temperature resolves the sampling temperature for role: a per-agent value
// wins over the global one, which wins over fallback.
func (c *Config) Temperature(role string, fallback float64) float64 {
	if a, ok := c.Agents[role]; ok && a.Temperature != nil {
		return *a.Temperature
	}
	if c.LLM.Temperature != nil {
		return *c.LLM.Temperature
	}
	return fallback
}

// SetTemperature applies t to every role, replacing per-agent values.
func (c *Config) SetTemperature(t float64) {
	c.LLM.Temperature = &t
	for role, a := range c.Agents {
		if a.Temperature != nil {
			a.Temperature = &t
			c.Agents[role] = a
		}
	}
}

// K returns the configured retrieval depth for role, if any.
func (c *Config) K(role string) (int, bool) {
	if a, ok := c.Agents[role]; ok && a.K != nil {
		return *a.K, true
	}
	return 0, false
}
