package research

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Protocol-Lattice/research-agent/src/agents"
	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

// DefaultTemperatures are the sampling temperatures each role is built
// with when Options does not override them.
var DefaultTemperatures = map[Role]float64{
	agents.RoleResearcher:  0.2,
	agents.RoleReviewer:    0.3,
	agents.RoleSynthesizer: 0.4,
	agents.RoleQuestioner:  0.4,
	agents.RoleFormatter:   0.3,
}

// GeneratorFactory builds the Generator for one role.
type GeneratorFactory func(role Role, temperature float64) (models.Generator, error)

// Event is reported to an Observer around every stage.
type Event struct {
	Step   int
	Agent  string
	Done   bool
	Status Status // set when Done
}

// Observer receives stage progress. It runs on the workflow goroutine.
type Observer func(Event)

// Options configure a System.
type Options struct {
	Retriever retrieval.Retriever

	// Generators supplies a Generator per role; roles missing here are built
	// with GeneratorFactory.
	Generators       map[Role]models.Generator
	GeneratorFactory GeneratorFactory

	// Temperatures and K override the per-role defaults.
	Temperatures map[Role]float64
	K            map[Role]int

	Observer Observer
	Logger   *slog.Logger

	now func() time.Time
}

type stage struct {
	agent             agents.Agent
	dependsOnPrevious bool
}

// System owns the five agents and runs them in a fixed order.
type System struct {
	stages   []stage
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the five agents in execution order.
func New(opts Options) (*System, error) {
	if opts.Retriever == nil {
		return nil, ErrNoRetriever
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	type ctor func(agents.Config) (agents.Agent, error)
	ctors := map[Role]ctor{
		agents.RoleResearcher:  func(c agents.Config) (agents.Agent, error) { return agents.NewResearcher(c) },
		agents.RoleReviewer:    func(c agents.Config) (agents.Agent, error) { return agents.NewReviewer(c) },
		agents.RoleSynthesizer: func(c agents.Config) (agents.Agent, error) { return agents.NewSynthesizer(c) },
		agents.RoleQuestioner:  func(c agents.Config) (agents.Agent, error) { return agents.NewQuestioner(c) },
		agents.RoleFormatter:   func(c agents.Config) (agents.Agent, error) { return agents.NewFormatter(c) },
	}

	s := &System{observer: opts.Observer, logger: logger, now: opts.now}
	if s.now == nil {
		s.now = time.Now
	}
	for i, role := range agents.Roles {
		gen, err := generatorFor(opts, role)
		if err != nil {
			return nil, err
		}
		cfg := agents.Config{Retriever: opts.Retriever, Generator: gen, Logger: logger}
		if k, ok := opts.K[role]; ok {
			cfg.K = &k
		}
		a, err := ctors[role](cfg)
		if err != nil {
			return nil, fmt.Errorf("build %s agent: %w", role, err)
		}
		s.stages = append(s.stages, stage{agent: a, dependsOnPrevious: i > 0})
	}
	return s, nil
}

func generatorFor(opts Options, role Role) (models.Generator, error) {
	if gen := opts.Generators[role]; gen != nil {
		return gen, nil
	}
	if opts.GeneratorFactory == nil {
		return nil, fmt.Errorf("%s: %w", role, ErrNoGenerator)
	}
	temp, ok := opts.Temperatures[role]
	if !ok {
		temp = DefaultTemperatures[role]
	}
	gen, err := opts.GeneratorFactory(role, temp)
	if err != nil {
		return nil, fmt.Errorf("%s generator: %w", role, err)
	}
	if gen == nil {
		return nil, fmt.Errorf("%s: %w", role, ErrNoGenerator)
	}
	return gen, nil
}

// Agents returns the agents in execution order.
func (s *System) Agents() []agents.Agent {
	out := make([]agents.Agent, len(s.stages))
	for i, st := range s.stages {
		out[i] = st.agent
	}
	return out
}

// Run executes the workflow for query and always returns a finalized
// record. Stages run strictly in order and the first failing stage ends
// the run; the results of earlier stages stay in the record.
func (s *System) Run(ctx context.Context, query string) (rec *Record) {
	rec = &Record{
		ID:        uuid.NewString(),
		Query:     query,
		Status:    StatusInProgress,
		Results:   make(map[Role]Result, len(s.stages)),
		StartedAt: s.now(),
	}
	logger := s.logger.With("run", rec.ID)
	logger.Info("research workflow started", "query", query)

	var (
		step int
		name string
	)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("research workflow panicked", "agent", name, "panic", r, "stack", string(debug.Stack()))
			if len(rec.Workflow) < step {
				rec.Workflow = append(rec.Workflow, LogEntry{Step: step, Agent: name, Status: StatusError})
			}
			s.finish(rec, fmt.Sprintf("%s agent failed: panic: %v", name, r))
		}
	}()

	var prev *Result
	for i, st := range s.stages {
		step = i + 1
		name = st.agent.Name()
		s.notify(Event{Step: step, Agent: name})

		in := agents.Input{}
		if st.dependsOnPrevious {
			in.Previous = prev
		}
		if st.agent.Role() == agents.RoleFormatter {
			in.Record = rec.Snapshot()
		}

		res, err := st.agent.Process(ctx, in, query)
		if err != nil {
			rec.Workflow = append(rec.Workflow, LogEntry{Step: step, Agent: name, Status: StatusError})
			s.notify(Event{Step: step, Agent: name, Done: true, Status: StatusError})
			logger.Error("stage aborted", "agent", name, "error", err)
			s.finish(rec, fmt.Sprintf("%s agent failed: %v", name, err))
			return rec
		}

		rec.Results[st.agent.Role()] = res
		rec.Workflow = append(rec.Workflow, LogEntry{Step: step, Agent: name, Status: res.Status})
		s.notify(Event{Step: step, Agent: name, Done: true, Status: res.Status})

		if res.Status != StatusSuccess {
			logger.Warn("stage failed", "agent", name, "message", res.Message)
			s.finish(rec, fmt.Sprintf("%s agent failed: %s", name, res.Message))
			return rec
		}
		prev = &res
	}

	if final, ok := rec.Results[agents.RoleFormatter]; ok {
		rec.Report = final.Report
		rec.Sources = append([]Citation(nil), final.Sources...)
	}
	s.finish(rec, "")
	logger.Info("research workflow completed", "sources", len(rec.Sources), "report_chars", len(rec.Report))
	return rec
}

func (s *System) finish(rec *Record, errMsg string) {
	rec.FinishedAt = s.now()
	if errMsg == "" {
		rec.Status = StatusSuccess
		return
	}
	rec.Status = StatusError
	rec.Error = strings.TrimSpace(errMsg)
	rec.Report = ""
	rec.Sources = nil
}

func (s *System) notify(ev Event) {
	if s.observer != nil {
		s.observer(ev)
	}
}
