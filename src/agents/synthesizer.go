package agents

import (
	"context"
	"fmt"
)

const synthesizerSystemPrompt = `You are a research synthesizer. Combine findings and critiques into new insights and testable hypotheses.

Rules:
1. Ground every hypothesis in the supplied findings and context.
2. Make hypotheses specific and testable, and label them "Hypothesis 1", "Hypothesis 2" and so on.
3. Connect findings across sources and name the patterns and relationships you see.
4. Propose concrete research directions.
5. State the evidence behind each hypothesis; drop any the evidence does not support.

Structure the synthesis as Key Insights, Patterns and Relationships, Testable Hypotheses and Research Directions.`

// Synthesizer turns findings plus critique into insights and hypotheses.
type Synthesizer struct {
	base
}

func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	b, err := newBase("SYNTHESIZER", RoleSynthesizer, 6, cfg)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{base: b}, nil
}

func (s *Synthesizer) Process(ctx context.Context, in Input, query string) (Result, error) {
	if res, rejected := s.rejectUpstream(in.Previous); rejected {
		return res, nil
	}
	s.logger.Info("starting synthesis")
	prev := in.Previous

	ans, err := s.retrieveContext(ctx, "hypotheses research questions future work "+query)
	if err != nil {
		return Result{}, err
	}

	prompt := fmt.Sprintf(`Synthesize the research analysis and critique related to: %s

RESEARCHER'S FINDINGS:
%s

REVIEWER'S CRITIQUE:
%s

STRENGTHS IDENTIFIED:
%s

WEAKNESSES IDENTIFIED:
%s

ADDITIONAL CONTEXT:
%s

Then:
1. Identify key insights and patterns
2. Connect findings from different sources
3. Generate 3-5 testable hypotheses
4. Propose specific research directions
5. Explain the evidence behind each hypothesis`, query, prev.ResearcherAnalysis, prev.Critique,
		bulletList(prev.Strengths, 5), bulletList(prev.Weaknesses, 5), contextOrDefault(ans))

	synthesis, err := s.generate(ctx, synthesizerSystemPrompt, prompt)
	if err != nil {
		return s.generationFailed(err), nil
	}

	res := Result{
		Agent:              s.name,
		Status:             StatusSuccess,
		Synthesis:          synthesis,
		Hypotheses:         ExtractHypotheses(synthesis),
		Insights:           ExtractInsights(synthesis),
		ResearcherAnalysis: prev.ResearcherAnalysis,
		PriorCritique:      prev.Critique,
	}
	s.logger.Info("synthesis complete", "hypotheses", len(res.Hypotheses), "insights", len(res.Insights))
	return res, nil
}

var _ Agent = (*Synthesizer)(nil)
