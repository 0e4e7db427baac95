package agents

import (
	"context"
	"fmt"
	"slices"
)

const reviewerSystemPrompt = `You are a critical research reviewer. Evaluate the findings you are given and identify their strengths, weaknesses and potential biases.

Rules:
1. Base the critique only on the supplied analysis and context.
2. Assess methodological strengths and weaknesses.
3. Look for biases, inconsistencies and gaps in reasoning.
4. Be constructive and specific, citing sources where possible.
5. Never raise a criticism the context does not support.

Structure the critique as numbered sections (1. Strengths, 2. Weaknesses, 3. Potential Biases, 4. Gaps or Missing Information) with bullet points under each.`

// Reviewer critiques the Researcher's analysis against methodology-focused
// context.
type Reviewer struct {
	base
}

func NewReviewer(cfg Config) (*Reviewer, error) {
	b, err := newBase("REVIEWER", RoleReviewer, 6, cfg)
	if err != nil {
		return nil, err
	}
	return &Reviewer{base: b}, nil
}

func (r *Reviewer) Process(ctx context.Context, in Input, query string) (Result, error) {
	if res, rejected := r.rejectUpstream(in.Previous); rejected {
		return res, nil
	}
	r.logger.Info("starting critique")
	prev := in.Previous

	ans, err := r.retrieveContext(ctx, "methodology limitations weaknesses "+query)
	if err != nil {
		return Result{}, err
	}

	prompt := fmt.Sprintf(`Review and critique the research analysis related to: %s

RESEARCHER'S ANALYSIS:
%s

KEY FINDINGS:
%s

ADDITIONAL CONTEXT:
%s

Cover:
1. Strengths of the research and analysis
2. Weaknesses or limitations
3. Potential biases or methodological concerns
4. Gaps or missing information
5. Consistency and logical coherence

Critique only what the material actually says.`, query, prev.Analysis, bulletList(prev.Findings, 10), contextOrDefault(ans))

	critique, err := r.generate(ctx, reviewerSystemPrompt, prompt)
	if err != nil {
		return r.generationFailed(err), nil
	}

	// Citations accumulate; duplicates are kept so provenance stays per stage.
	sources := slices.Concat(prev.Sources, ans.Sources)
	r.logger.Info("critique complete", "sources", len(sources))
	return Result{
		Agent:              r.name,
		Status:             StatusSuccess,
		Critique:           critique,
		ResearcherAnalysis: prev.Analysis,
		Strengths:          ExtractSection(critique, "strengths"),
		Weaknesses:         ExtractSection(critique, "weaknesses"),
		Sources:            sources,
		NumSources:         len(sources),
	}, nil
}

var _ Agent = (*Reviewer)(nil)
