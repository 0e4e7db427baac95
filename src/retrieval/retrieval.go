// Package retrieval is the grounding layer shared by every research agent:
// a query is embedded, matched against an indexed document collection and
// condensed into an answer with citations.
package retrieval

import (
	"context"
	"errors"
)

// Citation identifies where a piece of retrieved context came from.
// Page is empty when the source has no location information.
type Citation struct {
	Source string `json:"source"`
	Page   string `json:"page,omitempty"`
}

// Answer is the result of one retrieval: a synthesized answer plus the
// citations of every excerpt it was built from, in rank order.
type Answer struct {
	Text    string     `json:"answer"`
	Sources []Citation `json:"sources"`
}

// Retriever returns grounding context for query from at most k documents.
// k == 0 is valid and yields an empty Answer.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (Answer, error)
}

// ErrNegativeK is returned when a retrieval is requested with k < 0.
var ErrNegativeK = errors.New("retrieval: k must be >= 0")
