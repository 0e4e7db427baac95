package adk

import (
	"context"

	research "github.com/Protocol-Lattice/research-agent"
	"github.com/Protocol-Lattice/research-agent/src/history"
	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

// Module provisions part of the kit during bootstrap.
type Module interface {
	Name() string
	Provision(ctx context.Context, kit *AgentDevelopmentKit) error
}

// ModelProvider constructs the generator for one workflow role.
type ModelProvider func(ctx context.Context, role research.Role, temperature float64) (models.Generator, error)

// RetrievalBundle groups the retriever used by the agents with the pipeline
// that can ingest into it. Pipeline is nil for retrievers that cannot ingest.
type RetrievalBundle struct {
	Retriever retrieval.Retriever
	Pipeline  *retrieval.Pipeline
	// Close releases store connections; may be nil.
	Close func(ctx context.Context) error
}

// RetrievalProvider provisions the grounding layer shared by all agents.
type RetrievalProvider func(ctx context.Context) (RetrievalBundle, error)

// HistoryProvider opens the run history store.
type HistoryProvider func(ctx context.Context) (*history.Store, error)

// SystemOption is applied to the workflow options before the System is
// built.
type SystemOption func(*research.Options)
