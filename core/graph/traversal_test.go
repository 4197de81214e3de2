package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sgtdali/mcp-RAGON/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGraphStore is a mock implementation of Store for testing
type MockGraphStore struct {
	edges     map[uuid.UUID][]*model.RelationshipEdge
	docChunks map[uuid.UUID][]uuid.UUID
	edgeErr   error
	docErr    error
}

func NewMockGraphStore() *MockGraphStore {
	return &MockGraphStore{
		edges:     make(map[uuid.UUID][]*model.RelationshipEdge),
		docChunks: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *MockGraphStore) SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error) {
	if m.edgeErr != nil {
		return nil, m.edgeErr
	}
	var result []*model.RelationshipEdge
	for _, id := range chunkIDs {
		result = append(result, m.edges[id]...)
	}
	return result, nil
}

func (m *MockGraphStore) SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error) {
	if m.docErr != nil {
		return nil, m.docErr
	}
	return m.docChunks[documentID], nil
}

func (m *MockGraphStore) addChunkEdge(source, target uuid.UUID, edgeType model.EdgeType, weight float64) {
	m.edges[source] = append(m.edges[source], &model.RelationshipEdge{
		SourceChunkID: source,
		TargetChunkID: &target,
		EdgeType:      edgeType,
		Weight:        weight,
	})
}

func (m *MockGraphStore) addDocumentEdge(source, document uuid.UUID, edgeType model.EdgeType, weight float64) {
	m.edges[source] = append(m.edges[source], &model.RelationshipEdge{
		SourceChunkID:    source,
		TargetDocumentID: &document,
		EdgeType:         edgeType,
		Weight:           weight,
	})
}

func defaultTestConfig() *model.SearchConfig {
	config := model.DefaultSearchConfig()
	return &config
}

func TestExpand(t *testing.T) {
	t.Run("Seeds get score zero", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seedA := uuid.New()
		seedB := uuid.New()

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seedA, seedB}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		require.Len(t, scores, 2, "Expected only the seeds in the result")
		assert.Equal(t, 0.0, scores[seedA], "Expected seed score to be 0")
		assert.Equal(t, 0.0, scores[seedB], "Expected seed score to be 0")
	})

	t.Run("Depth one neighbor gets full edge contribution", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		neighbor := uuid.New()
		mockStore.addChunkEdge(seed, neighbor, model.EdgeTypeReference, 0.8)

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		// defaultEdgeWeight 1.0 * edge weight 0.8 * decay(1) = 0.8
		assert.InDelta(t, 0.8, scores[neighbor], 1e-9, "Expected depth 1 contribution without decay")
	})

	t.Run("Depth two contribution is halved by inverse decay", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		middle := uuid.New()
		far := uuid.New()
		mockStore.addChunkEdge(seed, middle, model.EdgeTypeReference, 1.0)
		mockStore.addChunkEdge(middle, far, model.EdgeTypeReference, 1.0)

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 1.0, scores[middle], 1e-9, "Expected full contribution at depth 1")
		assert.InDelta(t, 0.5, scores[far], 1e-9, "Expected halved contribution at depth 2")
	})

	t.Run("Multiple paths keep the maximum score, not the sum", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seedA := uuid.New()
		seedB := uuid.New()
		shared := uuid.New()
		mockStore.addChunkEdge(seedA, shared, model.EdgeTypeReference, 0.4)
		mockStore.addChunkEdge(seedB, shared, model.EdgeTypeReference, 0.9)

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seedA, seedB}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 0.9, scores[shared], 1e-9, "Expected maximum path score, not 1.3")
	})

	t.Run("Seeds can receive a boost from other seeds", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seedA := uuid.New()
		seedB := uuid.New()
		mockStore.addChunkEdge(seedA, seedB, model.EdgeTypeReference, 0.5)

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seedA, seedB}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 0.5, scores[seedB], 1e-9, "Expected pointed-to seed to be boosted")
		assert.Equal(t, 0.0, scores[seedA], "Expected unreferenced seed to stay at 0")
	})

	t.Run("Cyclic graph terminates", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		idA := uuid.New()
		idB := uuid.New()
		idC := uuid.New()
		mockStore.addChunkEdge(idA, idB, model.EdgeTypeReference, 1.0)
		mockStore.addChunkEdge(idB, idC, model.EdgeTypeReference, 1.0)
		mockStore.addChunkEdge(idC, idA, model.EdgeTypeReference, 1.0)

		config := defaultTestConfig()
		config.MaxGraphDepth = 10

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{idA}, defaultTestConfig())
		assert.NoError(t, err, "Expected Expand to not return an error")
		require.Len(t, scores, 3, "Expected each node exactly once")

		scores, err = Expand(context.Background(), mockStore, []uuid.UUID{idA}, config)
		assert.NoError(t, err, "Expected Expand to terminate on a cycle with large depth")
		require.Len(t, scores, 3, "Expected each node exactly once")
	})

	t.Run("Self loops are ignored", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		mockStore.addChunkEdge(seed, seed, model.EdgeTypeReference, 1.0)

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.Equal(t, 0.0, scores[seed], "Expected self loop to not boost the seed")
	})

	t.Run("Traversal stops at max depth", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		chain := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		for i := 0; i < len(chain)-1; i++ {
			mockStore.addChunkEdge(chain[i], chain[i+1], model.EdgeTypeReference, 1.0)
		}

		config := defaultTestConfig()
		config.MaxGraphDepth = 2

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{chain[0]}, config)

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.Contains(t, scores, chain[2], "Expected node at depth 2 to be reached")
		assert.NotContains(t, scores, chain[3], "Expected node beyond max depth to be unreached")
	})

	t.Run("Max depth zero returns only seeds", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		neighbor := uuid.New()
		mockStore.addChunkEdge(seed, neighbor, model.EdgeTypeReference, 1.0)

		config := defaultTestConfig()
		config.MaxGraphDepth = 0

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, config)

		assert.NoError(t, err, "Expected Expand to not return an error")
		require.Len(t, scores, 1, "Expected only the seed")
	})

	t.Run("Edge type weights scale contributions", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		strong := uuid.New()
		weak := uuid.New()
		mockStore.addChunkEdge(seed, strong, model.EdgeTypeReference, 1.0)
		mockStore.addChunkEdge(seed, weak, model.EdgeTypeRelatedTo, 1.0)

		config := defaultTestConfig()
		config.EdgeWeights = map[model.EdgeType]float64{
			model.EdgeTypeReference: 1.0,
			model.EdgeTypeRelatedTo: 0.25,
		}

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, config)

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 1.0, scores[strong], 1e-9, "Expected reference edge at full weight")
		assert.InDelta(t, 0.25, scores[weak], 1e-9, "Expected related_to edge scaled down")
	})

	t.Run("Document edge expands to the document's chunks", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		docID := uuid.New()
		docChunkA := uuid.New()
		docChunkB := uuid.New()
		mockStore.addDocumentEdge(seed, docID, model.EdgeTypeReference, 0.6)
		mockStore.docChunks[docID] = []uuid.UUID{docChunkA, docChunkB, seed}

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 0.6, scores[docChunkA], 1e-9, "Expected document chunk to get the edge contribution")
		assert.InDelta(t, 0.6, scores[docChunkB], 1e-9, "Expected document chunk to get the edge contribution")
		assert.Equal(t, 0.0, scores[seed], "Expected seed contained in the document to keep score 0")
	})

	t.Run("Custom depth decay factors are applied", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		middle := uuid.New()
		far := uuid.New()
		mockStore.addChunkEdge(seed, middle, model.EdgeTypeReference, 1.0)
		mockStore.addChunkEdge(middle, far, model.EdgeTypeReference, 1.0)

		config := defaultTestConfig()
		config.DepthDecay = []float64{0.9, 0.1}

		scores, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, config)

		assert.NoError(t, err, "Expected Expand to not return an error")
		assert.InDelta(t, 0.9, scores[middle], 1e-9, "Expected custom decay at depth 1")
		assert.InDelta(t, 0.1, scores[far], 1e-9, "Expected custom decay at depth 2")
	})

	t.Run("Store error is propagated", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		mockStore.edgeErr = fmt.Errorf("connection reset")
		seed := uuid.New()

		_, err := Expand(context.Background(), mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.Error(t, err, "Expected Expand to propagate the store error")
	})

	t.Run("Cancelled context stops traversal", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seed := uuid.New()
		neighbor := uuid.New()
		mockStore.addChunkEdge(seed, neighbor, model.EdgeTypeReference, 1.0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Expand(ctx, mockStore, []uuid.UUID{seed}, defaultTestConfig())

		assert.ErrorIs(t, err, context.Canceled, "Expected Expand to return the context error")
	})

	t.Run("Identical inputs give identical scores", func(t *testing.T) {
		mockStore := NewMockGraphStore()
		seeds := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
		targets := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
		for i, seed := range seeds {
			mockStore.addChunkEdge(seed, targets[i], model.EdgeTypeReference, 0.5+float64(i)*0.1)
			mockStore.addChunkEdge(seed, targets[3], model.EdgeTypeRelatedTo, 0.3)
		}

		first, err := Expand(context.Background(), mockStore, seeds, defaultTestConfig())
		require.NoError(t, err, "Expected Expand to not return an error")

		for i := 0; i < 5; i++ {
			again, err := Expand(context.Background(), mockStore, seeds, defaultTestConfig())
			require.NoError(t, err, "Expected Expand to not return an error")
			assert.Equal(t, first, again, "Expected deterministic scores for identical inputs")
		}
	})
}
