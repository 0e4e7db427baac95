package modules

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/adk"
	"github.com/Protocol-Lattice/research-agent/src/config"
	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/embed"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/store"
)

// RetrievalModule registers the retrieval provider with the kit.
type RetrievalModule struct {
	name     string
	provider adk.RetrievalProvider
}

// NewRetrievalModule creates a retrieval module. If name is empty the module
// is registered as "retrieval".
func NewRetrievalModule(name string, provider adk.RetrievalProvider) *RetrievalModule {
	if name == "" {
		name = "retrieval"
	}
	return &RetrievalModule{name: name, provider: provider}
}

func (m *RetrievalModule) Name() string { return m.name }

func (m *RetrievalModule) Provision(_ context.Context, kitInstance *adk.AgentDevelopmentKit) error {
	if m.provider == nil {
		return fmt.Errorf("retrieval provider is nil")
	}
	kitInstance.UseRetrievalProvider(m.provider)
	return nil
}

// StaticRetrieverProvider exposes an existing retriever without ingestion.
func StaticRetrieverProvider(r retrieval.Retriever) adk.RetrievalProvider {
	return func(context.Context) (adk.RetrievalBundle, error) {
		return adk.RetrievalBundle{Retriever: r}, nil
	}
}

// InMemoryRetrieval builds a RAG pipeline over a process-local store.
func InMemoryRetrieval(collection string, e embed.Embedder, gen models.Generator) *RetrievalModule {
	return NewRetrievalModule("retrieval:memory", func(context.Context) (adk.RetrievalBundle, error) {
		return pipelineBundle(store.NewMemoryStore(), e, gen, collection)
	})
}

// StoreRetrieval builds a RAG pipeline over the backend named in cfg.
// gen, when non-nil, condenses retrieved excerpts into an answer.
func StoreRetrieval(cfg config.RetrievalConfig, gen models.Generator) *RetrievalModule {
	backend := strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if backend == "" {
		backend = "memory"
	}
	return NewRetrievalModule("retrieval:"+backend, func(ctx context.Context) (adk.RetrievalBundle, error) {
		vs, err := OpenStore(ctx, cfg.Store)
		if err != nil {
			return adk.RetrievalBundle{}, err
		}
		e := embed.New(ctx, cfg.EmbedProvider, cfg.EmbedModel)
		return pipelineBundle(vs, e, gen, cfg.Collection)
	})
}

// OpenStore connects to the configured vector store backend.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.VectorStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "postgres":
		if cfg.URI == "" {
			return nil, fmt.Errorf("postgres store requires uri")
		}
		return store.NewPostgresStore(ctx, cfg.URI)
	case "mongodb":
		return store.NewMongoStore(ctx, cfg.URI, cfg.Database, cfg.Table)
	case "neo4j":
		if cfg.URI == "" {
			return nil, fmt.Errorf("neo4j store requires uri")
		}
		return store.NewNeo4jStore(ctx, cfg.URI, cfg.Username, cfg.Password, cfg.Database)
	case "qdrant":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("QDRANT_API_KEY")
		}
		return store.NewQdrantStore(cfg.URI, cfg.Table, key), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func pipelineBundle(vs store.VectorStore, e embed.Embedder, gen models.Generator, collection string) (adk.RetrievalBundle, error) {
	p, err := retrieval.NewPipeline(e, vs, gen, collection)
	if err != nil {
		return adk.RetrievalBundle{}, err
	}
	bundle := adk.RetrievalBundle{Retriever: p, Pipeline: p}
	if c, ok := vs.(store.Closer); ok {
		bundle.Close = c.Close
	}
	return bundle, nil
}
