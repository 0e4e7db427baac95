package embed

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"math"
	"os"
	"strings"
	"unicode"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrNotSupported is returned by providers that produced no vector.
var ErrNotSupported = errors.New("embeddings not supported by this provider")

// DummyDims is the vector width of DummyEmbedder.
const DummyDims = 256

// DummyEmbedder hashes lower-cased word tokens into a fixed-width,
// L2-normalized bag of words. It needs no network and texts sharing
// vocabulary land close together, which is enough for offline runs.
type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding is the deterministic vector behind DummyEmbedder.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, DummyDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%DummyDims]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// Auto chooses a provider from env:
// RESEARCH_EMBED_PROVIDER=openai|gemini|google|ollama|voyage|fastembed|dummy
// RESEARCH_EMBED_MODEL=<model string>
// Unknown or failing providers fall back to DummyEmbedder.
func Auto(ctx context.Context) Embedder {
	return New(ctx, os.Getenv("RESEARCH_EMBED_PROVIDER"), os.Getenv("RESEARCH_EMBED_MODEL"))
}

// New builds the embedder named by provider, falling back to DummyEmbedder.
func New(ctx context.Context, provider, model string) Embedder {
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)

	var (
		e   Embedder
		err error
	)
	switch provider {
	case "", "dummy":
		return DummyEmbedder{}
	case "openai":
		e, err = NewOpenAIEmbedder(model)
	case "google", "gemini":
		e, err = NewGeminiEmbedder(ctx, model)
	case "ollama":
		e, err = NewOllamaEmbedder(model)
	case "voyage", "anthropic", "claude":
		e, err = NewVoyageEmbedder(model)
	case "fastembed":
		e, err = NewFastEmbedder(ctx, defaultFastEmbedOptions())
	default:
		err = errors.New("unknown embed provider " + provider)
	}
	if err != nil {
		slog.Warn("embedder unavailable, falling back to dummy", "provider", provider, "error", err)
		return DummyEmbedder{}
	}
	return e
}
