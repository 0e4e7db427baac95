//go:build !fastembed

package embed

import (
	"context"
	"errors"
)

type Options struct{}

func defaultFastEmbedOptions() *Options { return nil }

func NewFastEmbedder(context.Context, *Options) (Embedder, error) {
	return nil, errors.New("fastembed support not included; rebuild with -tags fastembed")
}
