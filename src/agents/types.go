// Package agents implements the five research roles. Each agent wraps a
// Generator and the shared Retriever with a fixed prompt strategy and turns
// the raw model text into a structured Result for the next stage.
package agents

import (
	"context"
	"slices"
	"time"

	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

// Status is the outcome of a stage or of a whole run.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusInProgress Status = "in_progress"
)

// Role keys a stage's Result inside a Record.
type Role string

const (
	RoleResearcher  Role = "researcher"
	RoleReviewer    Role = "reviewer"
	RoleSynthesizer Role = "synthesizer"
	RoleQuestioner  Role = "questioner"
	RoleFormatter   Role = "formatter"
)

// Roles lists every role in execution order.
var Roles = []Role{RoleResearcher, RoleReviewer, RoleSynthesizer, RoleQuestioner, RoleFormatter}

// Citation is re-exported from the retrieval layer so results and answers
// share one source type.
type Citation = retrieval.Citation

// Result is what one agent hands to the next. Only the fields relevant to
// the producing role are populated.
type Result struct {
	Agent   string `json:"agent"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`

	Analysis    string `json:"analysis,omitempty"`
	Critique    string `json:"critique,omitempty"`
	Synthesis   string `json:"synthesis,omitempty"`
	GapAnalysis string `json:"gap_analysis,omitempty"`
	Report      string `json:"report,omitempty"`

	// Upstream text carried forward for later prompts.
	ResearcherAnalysis string   `json:"researcher_analysis,omitempty"`
	PriorCritique      string   `json:"prior_critique,omitempty"`
	PriorSynthesis     string   `json:"prior_synthesis,omitempty"`
	PriorHypotheses    []string `json:"prior_hypotheses,omitempty"`

	Findings   []string `json:"findings,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	Hypotheses []string `json:"hypotheses,omitempty"`
	Insights   []string `json:"insights,omitempty"`
	Gaps       []string `json:"gaps,omitempty"`
	Questions  []string `json:"questions,omitempty"`

	Sources    []Citation `json:"sources,omitempty"`
	NumSources int        `json:"num_sources,omitempty"`
}

// OK reports whether the result may feed a dependent stage.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Clone returns a copy that shares no slices with r.
func (r Result) Clone() Result {
	r.PriorHypotheses = slices.Clone(r.PriorHypotheses)
	r.Findings = slices.Clone(r.Findings)
	r.Strengths = slices.Clone(r.Strengths)
	r.Weaknesses = slices.Clone(r.Weaknesses)
	r.Hypotheses = slices.Clone(r.Hypotheses)
	r.Insights = slices.Clone(r.Insights)
	r.Gaps = slices.Clone(r.Gaps)
	r.Questions = slices.Clone(r.Questions)
	r.Sources = slices.Clone(r.Sources)
	return r
}

// LogEntry records one attempted stage.
type LogEntry struct {
	Step   int    `json:"step"`
	Agent  string `json:"agent"`
	Status Status `json:"status"`
}

// Record aggregates one end-to-end run.
type Record struct {
	ID         string          `json:"id"`
	Query      string          `json:"query"`
	Status     Status          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Report     string          `json:"report,omitempty"`
	Sources    []Citation      `json:"sources,omitempty"`
	Results    map[Role]Result `json:"results"`
	Workflow   []LogEntry      `json:"workflow"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at,omitzero"`
}

// Result returns the stored result for role, if any.
func (r *Record) Result(role Role) (Result, bool) {
	if r == nil {
		return Result{}, false
	}
	res, ok := r.Results[role]
	return res, ok
}

// Snapshot returns a deep copy of the record.
func (r *Record) Snapshot() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Sources = slices.Clone(r.Sources)
	cp.Workflow = slices.Clone(r.Workflow)
	cp.Results = make(map[Role]Result, len(r.Results))
	for role, res := range r.Results {
		cp.Results[role] = res.Clone()
	}
	return &cp
}

// Input carries upstream state into Process. Previous is nil for the first
// stage; Record is only read by the Formatter.
type Input struct {
	Previous *Result
	Record   *Record
}

// Agent is one stage of the research workflow.
type Agent interface {
	Name() string
	Role() Role
	// Process never reports stage failures through the error return; those
	// come back as a Result with StatusError. A non-nil error means the
	// stage could not produce a Result at all.
	Process(ctx context.Context, in Input, query string) (Result, error)
}
