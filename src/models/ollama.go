package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaLLM struct {
	Client      *ollama.Client
	Model       string
	Temperature float64
}

func NewOllamaLLM(model string, temperature float64) (*OllamaLLM, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	// Local models can be slow on long research prompts.
	httpClient := &http.Client{Timeout: 5 * time.Minute}

	return &OllamaLLM{
		Client:      ollama.NewClient(u, httpClient),
		Model:       model,
		Temperature: temperature,
	}, nil
}

func (o *OllamaLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	stream := false
	req := &ollama.GenerateRequest{
		Model:   o.Model,
		Prompt:  prompt,
		System:  strings.TrimSpace(system),
		Stream:  &stream,
		Options: map[string]any{"temperature": o.Temperature},
	}

	var text strings.Builder
	if err := o.Client.Generate(ctx, req, func(gr ollama.GenerateResponse) error {
		text.WriteString(gr.Response)
		return nil
	}); err != nil {
		return "", err
	}
	return text.String(), nil
}
