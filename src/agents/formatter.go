package agents

import (
	"context"
	"fmt"
	"slices"
)

const formatterSystemPrompt = `You are a research report formatter. Compile the analyses of several specialist agents into one well-structured report.

Rules:
1. Organise the material clearly and logically.
2. Keep every key finding, critique, hypothesis and question.
3. Include only information present in the supplied analyses.
4. Reference sources properly.
5. Write in a professional, readable register.

Use the sections Executive Summary, Key Findings, Critical Analysis, Synthesized Insights, Hypotheses, Research Gaps and Questions, Conclusions and Sources.`

// Formatter recombines every earlier stage into the final report. It reads
// the whole run record rather than only its predecessor and never
// retrieves.
type Formatter struct {
	base
}

func NewFormatter(cfg Config) (*Formatter, error) {
	b, err := newBase("FORMATTER", RoleFormatter, 0, cfg)
	if err != nil {
		return nil, err
	}
	return &Formatter{base: b}, nil
}

func (f *Formatter) Process(ctx context.Context, in Input, query string) (Result, error) {
	if res, rejected := f.rejectUpstream(in.Previous); rejected {
		return res, nil
	}
	f.logger.Info("compiling report")

	researcher, _ := in.Record.Result(RoleResearcher)
	reviewer, _ := in.Record.Result(RoleReviewer)
	synthesizer, _ := in.Record.Result(RoleSynthesizer)
	questioner, _ := in.Record.Result(RoleQuestioner)

	prompt := fmt.Sprintf(`Compile a comprehensive research report for: %s

RESEARCHER'S ANALYSIS:
%s

REVIEWER'S CRITIQUE:
%s

SYNTHESIZER'S SYNTHESIS:
%s

HYPOTHESES:
%s

QUESTIONER'S GAP ANALYSIS:
%s

RESEARCH QUESTIONS:
%s

SOURCES:
%s

Produce a structured report with citations that carries every key point from the analyses above.`, query,
		orNA(researcher.Analysis), orNA(reviewer.Critique), orNA(synthesizer.Synthesis),
		bulletList(synthesizer.Hypotheses, 0), orNA(questioner.GapAnalysis),
		bulletList(questioner.Questions, 0), sourceList(researcher.Sources, 10, false))

	report, err := f.generate(ctx, formatterSystemPrompt, prompt)
	if err != nil {
		return f.generationFailed(err), nil
	}

	sources := slices.Clone(researcher.Sources)
	f.logger.Info("report compiled", "chars", len(report))
	return Result{
		Agent:      f.name,
		Status:     StatusSuccess,
		Report:     report,
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

var _ Agent = (*Formatter)(nil)
