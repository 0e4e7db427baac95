package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Protocol-Lattice/research-agent/src/models"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/embed"
	"github.com/Protocol-Lattice/research-agent/src/retrieval/store"
)

// DefaultCollection is the collection searched when none is configured.
const DefaultCollection = "research_documents"

const answerSystemPrompt = `You answer questions strictly from the numbered document excerpts you are given.
Cite excerpts by their number. If the excerpts do not contain the answer, say so plainly.
Do not use any knowledge that is not present in the excerpts.`

// Pipeline is the RAG implementation of Retriever: it embeds the query,
// searches the vector store and condenses the top matches into an answer.
type Pipeline struct {
	Embedder   embed.Embedder
	Store      store.VectorStore
	Generator  models.Generator // optional; nil returns the excerpts verbatim
	Collection string
	Logger     *slog.Logger
}

// NewPipeline wires a pipeline over the given store and embedder.
func NewPipeline(e embed.Embedder, s store.VectorStore, gen models.Generator, collection string) (*Pipeline, error) {
	if e == nil {
		return nil, errors.New("retrieval: embedder is required")
	}
	if s == nil {
		return nil, errors.New("retrieval: vector store is required")
	}
	if strings.TrimSpace(collection) == "" {
		collection = DefaultCollection
	}
	return &Pipeline{Embedder: e, Store: s, Generator: gen, Collection: collection}, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Retrieve implements Retriever.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) (Answer, error) {
	if k < 0 {
		return Answer{}, ErrNegativeK
	}
	if k == 0 {
		return Answer{}, nil
	}

	vec, err := p.Embedder.Embed(ctx, query)
	if err != nil {
		return Answer{}, fmt.Errorf("embed query: %w", err)
	}
	matches, err := p.Store.Search(ctx, p.Collection, vec, k)
	if err != nil {
		return Answer{}, fmt.Errorf("search %s: %w", p.Collection, err)
	}
	if len(matches) == 0 {
		p.logger().Info("retrieval: no matching chunks", "collection", p.Collection)
		return Answer{}, nil
	}

	sources := make([]Citation, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Citation{Source: m.Source, Page: m.Page})
	}
	excerpts := formatExcerpts(matches)

	if p.Generator == nil {
		return Answer{Text: excerpts, Sources: sources}, nil
	}
	prompt := fmt.Sprintf("Question: %s\n\nExcerpts:\n%s\n\nAnswer:", query, excerpts)
	text, err := p.Generator.Generate(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}
	p.logger().Debug("retrieval: answer synthesized", "chunks", len(matches), "chars", len(text))
	return Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

func formatExcerpts(matches []store.Match) string {
	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", i+1, m.Source)
		if m.Page != "" {
			fmt.Fprintf(&b, " (page %s)", m.Page)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(m.Text))
	}
	return b.String()
}

var _ Retriever = (*Pipeline)(nil)
