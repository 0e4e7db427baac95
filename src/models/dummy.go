package models

import (
	"context"
	"fmt"
	"strings"
)

// DummyLLM is an offline Generator for local runs and tests. Its output
// follows the section layout the research agents ask for, so every
// extraction step has something to match.
type DummyLLM struct {
	Prefix string
}

func NewDummyLLM(prefix string) *DummyLLM {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyLLM{Prefix: prefix}
}

const dummyBody = `Key Findings:
- Finding drawn from the request: %s
- The supplied context was produced without a live model.
1. Strengths:
- The pipeline executed every stage in order.
2. Weaknesses:
- No real model evaluated the retrieved evidence.
Hypothesis 1: grounding every stage in retrieved context reduces fabrication.
Key insight: a recurring pattern links the findings to their sources.
Knowledge gap: the output was not produced from real generation.
What would a live model conclude from the same context?`

func (d *DummyLLM) Generate(_ context.Context, _ string, prompt string) (string, error) {
	return d.Prefix + "\n" + fmt.Sprintf(dummyBody, lastLine(prompt)), nil
}

func lastLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if candidate := strings.TrimSpace(lines[i]); candidate != "" {
			return candidate
		}
	}
	return "<empty prompt>"
}

var _ Generator = (*DummyLLM)(nil)
