package embedding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sgtdali/mcp-RAGON/model"
	"github.com/sony/gobreaker"
)

// Breaker wraps an Embedder with a circuit breaker so a flapping provider
// trips fast instead of timing out on every query. While the breaker is
// open, calls fail immediately with model.ErrEmbeddingUnavailable.
type Breaker struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker creates a circuit breaker around an embedder. State changes
// are logged through the given logger.
func NewBreaker(inner Embedder, name string, logger *slog.Logger) *Breaker {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Embed implements Embedder
func (b *Breaker) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Join(model.ErrEmbeddingUnavailable, err)
		}
		return nil, err
	}
	return result.([]float32), nil
}
