package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sgtdali/mcp-RAGON/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc(t *testing.T) {
	t.Run("Func adapts a plain function", func(t *testing.T) {
		embedder := Func(func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 2, 3}, nil
		})

		embedding, err := embedder.Embed(context.Background(), "some text")
		assert.NoError(t, err, "Expected Embed to not return an error")
		assert.Equal(t, []float32{1, 2, 3}, embedding, "Expected the function result")
	})
}

func TestBreaker(t *testing.T) {
	t.Run("Successful calls pass through", func(t *testing.T) {
		inner := Func(func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.5}, nil
		})
		breaker := NewBreaker(inner, "test", nil)

		embedding, err := breaker.Embed(context.Background(), "query")
		assert.NoError(t, err, "Expected Embed to not return an error")
		assert.Equal(t, []float32{0.5}, embedding, "Expected the inner result")
	})

	t.Run("Provider errors pass through while closed", func(t *testing.T) {
		inner := Func(func(ctx context.Context, text string) ([]float32, error) {
			return nil, fmt.Errorf("%w: rate limited", model.ErrEmbeddingUnavailable)
		})
		breaker := NewBreaker(inner, "test", nil)

		_, err := breaker.Embed(context.Background(), "query")
		assert.ErrorIs(t, err, model.ErrEmbeddingUnavailable, "Expected the inner error kind")
	})

	t.Run("Repeated failures open the breaker", func(t *testing.T) {
		calls := 0
		inner := Func(func(ctx context.Context, text string) ([]float32, error) {
			calls++
			return nil, errors.New("provider down")
		})
		breaker := NewBreaker(inner, "test", nil)

		// Enough consecutive failures to trip (>= 3 requests, >= 60% failures).
		for i := 0; i < 5; i++ {
			_, err := breaker.Embed(context.Background(), "query")
			require.Error(t, err, "Expected failing calls to error")
		}

		callsBeforeOpen := calls
		_, err := breaker.Embed(context.Background(), "query")
		assert.ErrorIs(t, err, model.ErrEmbeddingUnavailable, "Expected open breaker to report the embedding error kind")
		assert.Equal(t, callsBeforeOpen, calls, "Expected the open breaker to short-circuit the provider")
	})
}
