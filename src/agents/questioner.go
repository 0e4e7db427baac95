package agents

import (
	"context"
	"fmt"
	"slices"
)

const questionerSystemPrompt = `You are a research questioner. Identify knowledge gaps and generate critical follow-up questions.

Rules:
1. Derive gaps from the analysis and synthesis you are given.
2. Ask specific, answerable research questions, each ending with a question mark.
3. Focus on gaps the research itself makes evident, and describe each as a "gap".
4. Prioritise questions that would move the field forward.
5. Stay within the topic of the supplied research.

Structure the output as Knowledge Gaps, Critical Questions and Research Priorities.`

// truncateAt bounds how much upstream analysis is repeated in the prompt.
const truncateAt = 500

// Questioner finds knowledge gaps and follow-up questions.
type Questioner struct {
	base
}

func NewQuestioner(cfg Config) (*Questioner, error) {
	b, err := newBase("QUESTIONER", RoleQuestioner, 5, cfg)
	if err != nil {
		return nil, err
	}
	return &Questioner{base: b}, nil
}

func (q *Questioner) Process(ctx context.Context, in Input, query string) (Result, error) {
	if res, rejected := q.rejectUpstream(in.Previous); rejected {
		return res, nil
	}
	q.logger.Info("identifying gaps and questions")
	prev := in.Previous

	ans, err := q.retrieveContext(ctx, "research gaps limitations future work "+query)
	if err != nil {
		return Result{}, err
	}

	prompt := fmt.Sprintf(`Identify gaps and generate questions from the research analysis related to: %s

SYNTHESIS AND HYPOTHESES:
%s

HYPOTHESES GENERATED:
%s

KEY INSIGHTS:
%s

RESEARCHER'S ANALYSIS:
%s

REVIEWER'S CRITIQUE:
%s

ADDITIONAL CONTEXT:
%s

Identify:
1. Knowledge gaps in the current research
2. Unanswered questions that emerged
3. Critical follow-up questions (5-7 questions)
4. Research priorities for future work
5. Areas needing further investigation`, query, prev.Synthesis,
		bulletList(prev.Hypotheses, 5), bulletList(prev.Insights, 5),
		truncate(prev.ResearcherAnalysis, truncateAt), truncate(prev.PriorCritique, truncateAt),
		contextOrDefault(ans))

	gapAnalysis, err := q.generate(ctx, questionerSystemPrompt, prompt)
	if err != nil {
		return q.generationFailed(err), nil
	}

	res := Result{
		Agent:           q.name,
		Status:          StatusSuccess,
		GapAnalysis:     gapAnalysis,
		Gaps:            ExtractGaps(gapAnalysis),
		Questions:       ExtractQuestions(gapAnalysis),
		PriorSynthesis:  prev.Synthesis,
		PriorHypotheses: slices.Clone(prev.Hypotheses),
	}
	q.logger.Info("gap analysis complete", "gaps", len(res.Gaps), "questions", len(res.Questions))
	return res, nil
}

var _ Agent = (*Questioner)(nil)
