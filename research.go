// Package research runs the five-stage research workflow: Researcher,
// Reviewer, Synthesizer, Questioner and Formatter, each grounded in a shared
// retriever, turning a free-text query into a structured report.
package research

import (
	"github.com/Protocol-Lattice/research-agent/src/agents"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

type (
	Record   = agents.Record
	Result   = agents.Result
	LogEntry = agents.LogEntry
	Citation = agents.Citation
	Status   = agents.Status
	Role     = agents.Role
)

const (
	StatusSuccess    = agents.StatusSuccess
	StatusError      = agents.StatusError
	StatusInProgress = agents.StatusInProgress
)

var (
	ErrNoRetriever = agents.ErrNoRetriever
	ErrNoGenerator = agents.ErrNoGenerator
	ErrNegativeK   = retrieval.ErrNegativeK
)
