package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval"
)

const (
	msgInvalidInput = "Invalid input from previous agent"
	msgNoDocuments  = "No relevant documents found"
	noContext       = "No additional context available"
	notAvailable    = "N/A"
)

var (
	ErrNoRetriever = errors.New("agents: retriever is required")
	ErrNoGenerator = errors.New("agents: generator is required")
	// ErrEmptyGeneration marks a provider call that returned only whitespace.
	ErrEmptyGeneration = errors.New("empty response from model")
)

// Config holds the collaborators and tunables shared by every role.
type Config struct {
	Retriever retrieval.Retriever
	Generator models.Generator
	// K overrides the role's default retrieval depth when non-nil.
	K      *int
	Logger *slog.Logger
}

// base is embedded by every role and owns the retrieval and generation
// plumbing.
type base struct {
	name      string
	role      Role
	k         int
	retriever retrieval.Retriever
	gen       models.Generator
	logger    *slog.Logger
}

func newBase(name string, role Role, defaultK int, cfg Config) (base, error) {
	if cfg.Retriever == nil {
		return base{}, ErrNoRetriever
	}
	if cfg.Generator == nil {
		return base{}, ErrNoGenerator
	}
	k := defaultK
	if cfg.K != nil {
		k = *cfg.K
	}
	if k < 0 {
		return base{}, fmt.Errorf("%s: %w", name, retrieval.ErrNegativeK)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		name:      name,
		role:      role,
		k:         k,
		retriever: cfg.Retriever,
		gen:       cfg.Generator,
		logger:    logger.With("agent", name),
	}, nil
}

func (b *base) Name() string { return b.name }
func (b *base) Role() Role   { return b.role }

// K is the retrieval depth the agent was built with.
func (b *base) K() int { return b.k }

// retrieveContext asks the shared retriever for at most k documents.
// k == 0 never touches the retriever.
func (b *base) retrieveContext(ctx context.Context, query string) (retrieval.Answer, error) {
	if b.k == 0 {
		return retrieval.Answer{}, nil
	}
	ans, err := b.retriever.Retrieve(ctx, query, b.k)
	if err != nil {
		return retrieval.Answer{}, fmt.Errorf("%s: retrieve context: %w", b.name, err)
	}
	return ans, nil
}

// generate calls the model once. Empty output counts as a failure.
func (b *base) generate(ctx context.Context, system, prompt string) (string, error) {
	text, err := b.gen.Generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyGeneration
	}
	return text, nil
}

func (b *base) fail(message string) Result {
	return Result{Agent: b.name, Status: StatusError, Message: message}
}

// generationFailed logs err and converts it into an error Result.
func (b *base) generationFailed(err error) Result {
	b.logger.Error("generation failed", "error", err)
	return b.fail(err.Error())
}

// rejectUpstream is the short-circuit for a failed or missing predecessor.
func (b *base) rejectUpstream(prev *Result) (Result, bool) {
	if prev.OK() {
		return Result{}, false
	}
	b.logger.Warn("skipping stage after upstream failure")
	return b.fail(msgInvalidInput), true
}

func contextOrDefault(ans retrieval.Answer) string {
	if strings.TrimSpace(ans.Text) == "" {
		return noContext
	}
	return ans.Text
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func bulletList(items []string, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item)
	}
	return b.String()
}

func sourceList(sources []Citation, limit int, withPage bool) string {
	if len(sources) > limit {
		sources = sources[:limit]
	}
	var b strings.Builder
	for i, s := range sources {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := s.Source
		if name == "" {
			name = "Unknown"
		}
		b.WriteString("- ")
		b.WriteString(name)
		if withPage {
			page := s.Page
			if page == "" {
				page = notAvailable
			}
			fmt.Fprintf(&b, " (Page: %s)", page)
		}
	}
	return b.String()
}

// truncate keeps the first n runes of s and marks the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}
