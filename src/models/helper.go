package models

import (
	"context"
	"fmt"
	"strings"
)

// DefaultModel is used when no model identifier is configured.
const DefaultModel = "gemini-2.5-flash"

// NewLLMProvider returns a Generator for provider bound to model and temperature.
func NewLLMProvider(ctx context.Context, provider, model string, temperature float64) (Generator, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini", "google":
		return NewGeminiLLM(ctx, model, temperature)
	case "openai":
		return NewOpenAILLM(model, temperature), nil
	case "anthropic", "claude":
		return NewAnthropicLLM(model, temperature), nil
	case "ollama":
		return NewOllamaLLM(model, temperature)
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
