//go:build fastembed

package embed

import (
	"context"
	"os"

	fastembed "github.com/anush008/fastembed-go"
)

// Options configures the local ONNX embedder.
type Options struct {
	Model     fastembed.EmbeddingModel // zero value picks bge-small-en-v1.5
	CacheDir  string
	MaxLength int
}

type FastEmbedder struct {
	m *fastembed.FlagEmbedding
}

func defaultFastEmbedOptions() *Options {
	return &Options{CacheDir: os.Getenv("RESEARCH_FASTEMBED_CACHE")}
}

func NewFastEmbedder(_ context.Context, opt *Options) (Embedder, error) {
	var init *fastembed.InitOptions
	if opt != nil {
		init = &fastembed.InitOptions{
			Model:     opt.Model,
			CacheDir:  opt.CacheDir,
			MaxLength: opt.MaxLength,
		}
	}
	m, err := fastembed.NewFlagEmbedding(init)
	if err != nil {
		return nil, err
	}
	return &FastEmbedder{m: m}, nil
}

// Embed embeds a single query string.
func (e *FastEmbedder) Embed(_ context.Context, q string) ([]float32, error) {
	return e.m.QueryEmbed(q)
}

func (e *FastEmbedder) Close() error {
	if e.m != nil {
		e.m.Destroy()
	}
	return nil
}
