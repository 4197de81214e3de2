// Package embedding turns query text into fixed-dimension vectors via an
// external embedding provider. Implementations signal provider failures by
// wrapping model.ErrEmbeddingUnavailable; they never retry internally and
// never fall back to a zero vector, since a zero vector would silently
// corrupt the ranking. Retry policy belongs to the caller.
package embedding

import (
	"context"
)

// Embedder generates a fixed-dimension embedding vector for a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Func adapts a plain function to the Embedder interface
type Func func(ctx context.Context, text string) ([]float32, error)

// Embed implements Embedder
func (f Func) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
