package agents

import (
	"context"
	"fmt"
)

const researcherSystemPrompt = `You are a meticulous research analyst. Read the supplied document context and extract its key findings, methodologies and conclusions.

Rules:
1. Use only the supplied context. Never invent facts, figures or sources.
2. Attribute every finding to the source it came from.
3. Record the methods used and the results they produced.
4. Name the main contribution of each document.
5. Note limitations or gaps the documents themselves acknowledge.
6. Stay precise and factual; do not speculate.

Organise the analysis under the headings Key Findings, Methodologies, Conclusions and Limitations, using bullet points for individual findings.`

// Researcher grounds the run: it retrieves documents for the query and
// extracts the findings every later stage builds on.
type Researcher struct {
	base
}

func NewResearcher(cfg Config) (*Researcher, error) {
	b, err := newBase("RESEARCHER", RoleResearcher, 10, cfg)
	if err != nil {
		return nil, err
	}
	return &Researcher{base: b}, nil
}

func (r *Researcher) Process(ctx context.Context, _ Input, query string) (Result, error) {
	r.logger.Info("starting analysis")

	ans, err := r.retrieveContext(ctx, query)
	if err != nil {
		return Result{}, err
	}
	if len(ans.Sources) == 0 {
		r.logger.Warn("retrieval returned no documents")
		return r.fail(msgNoDocuments), nil
	}

	prompt := fmt.Sprintf(`Analyze the research documents related to: %s

CONTEXT FROM DOCUMENTS:
%s

SOURCES:
%s

Provide a detailed analysis covering:
1. Key findings
2. Methodologies used
3. Main conclusions
4. Limitations or gaps mentioned

Use only the context above and cite a source for each finding.`, query, contextOrDefault(ans), sourceList(ans.Sources, 5, true))

	analysis, err := r.generate(ctx, researcherSystemPrompt, prompt)
	if err != nil {
		return r.generationFailed(err), nil
	}

	sources := append([]Citation(nil), ans.Sources...)
	r.logger.Info("analysis complete", "sources", len(sources))
	return Result{
		Agent:      r.name,
		Status:     StatusSuccess,
		Analysis:   analysis,
		Findings:   ExtractFindings(analysis),
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

var _ Agent = (*Researcher)(nil)
