// Package retrieval orchestrates one search: embed the query, fetch
// similarity seeds, optionally expand them through the relationship graph
// and rank the merged candidates.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sgtdali/mcp-RAGON/core/graph"
	"github.com/sgtdali/mcp-RAGON/core/ranking"
	"github.com/sgtdali/mcp-RAGON/embedding"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
)

// multiQuerySeparator splits a query string into independently embedded
// subqueries whose results are fused by reciprocal rank.
const multiQuerySeparator = "||"

// rrfK dampens the rank contribution in reciprocal rank fusion (1/(k+rank)).
const rrfK = 60

// ChunkStore defines the chunk operations the engine needs
type ChunkStore interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error)
	SelectChunksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Chunk, error)
	SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error)
}

// EdgeStore defines the edge operations the engine needs
type EdgeStore interface {
	SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error)
}

// graphStore adapts the two stores to the traversal's view of the graph.
type graphStore struct {
	chunks ChunkStore
	edges  EdgeStore
}

func (s *graphStore) SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error) {
	return s.edges.SelectEdgesFromChunks(ctx, chunkIDs)
}

func (s *graphStore) SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error) {
	return s.chunks.SelectChunkIDsByDocument(ctx, documentID)
}

// Engine runs hybrid searches against a chunk store and its relationship
// graph. It is safe for concurrent use; the configuration is read-only
// after construction.
type Engine struct {
	chunks   ChunkStore
	edges    EdgeStore
	embedder embedding.Embedder
	config   *model.SearchConfig
	logger   *slog.Logger
}

// NewEngine creates a search engine. The configuration is validated once
// here so every later query can trust it.
func NewEngine(chunks ChunkStore, edges EdgeStore, embedder embedding.Embedder, config *model.SearchConfig, logger *slog.Logger) (*Engine, error) {
	if chunks == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("chunk store is nil"))
	}
	if edges == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("edge store is nil"))
	}
	if embedder == nil {
		return nil, helper.NewError("engine validation", fmt.Errorf("embedder is nil"))
	}
	if config == nil {
		defaults := model.DefaultSearchConfig()
		config = &defaults
	}
	if err := config.Validate(); err != nil {
		return nil, helper.NewError("engine validation", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		chunks:   chunks,
		edges:    edges,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}, nil
}

// Search runs one query end to end and returns the ranked candidates.
//
// The query is embedded and matched against the stored chunks by cosine
// similarity. With opts.DeepSearch the similarity seeds are additionally
// expanded through the relationship graph; a failure during that expansion
// is not fatal, the response degrades to pure vector results with
// Degraded set and a warning attached. Embedding and seed-search failures
// are fatal.
//
// Queries containing "||" are treated as multiple subqueries searched
// independently and fused by reciprocal rank before ranking.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) (*model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, helper.NewError("query validation", model.ErrEmptyQuery)
	}

	topK := e.normalizedTopK(opts.TopK)

	vector, err := e.vectorCandidates(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Vector search done",
		slog.Int("seeds", len(vector)),
		slog.Int("top_k", topK),
	)

	response := &model.SearchResponse{}

	var graphScores map[uuid.UUID]float64
	var graphChunks map[uuid.UUID]*model.Chunk
	if opts.DeepSearch && e.config.MaxGraphDepth > 0 && len(vector) > 0 {
		graphScores, graphChunks, err = e.expandSeeds(ctx, vector)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.Warn("Graph expansion failed, degrading to vector results",
				slog.String("error", err.Error()),
			)
			response.Degraded = true
			response.Warnings = append(response.Warnings, fmt.Sprintf("%v: %v", model.ErrGraphExpansionFailed, err))
			graphScores, graphChunks = nil, nil
		}
	}

	results, err := ranking.Rank(vector, graphScores, graphChunks, e.config)
	if err != nil {
		return nil, helper.NewError("rank candidates", err)
	}

	response.Results = results
	return response, nil
}

// normalizedTopK clamps a requested seed count to the configured bounds
func (e *Engine) normalizedTopK(requested int) int {
	if requested <= 0 {
		return e.config.TopK
	}
	if requested > e.config.MaxTopK {
		return e.config.MaxTopK
	}
	return requested
}

// vectorCandidates embeds the query and fetches the similarity seeds.
// Multi-part queries are searched per part and fused by reciprocal rank.
func (e *Engine) vectorCandidates(ctx context.Context, query string, topK int) ([]ranking.VectorCandidate, error) {
	subqueries := splitQuery(query)
	if len(subqueries) <= 1 {
		return e.searchSimilar(ctx, query, topK)
	}
	return e.fusedCandidates(ctx, subqueries, topK)
}

// searchSimilar runs a single embed-and-search round trip
func (e *Engine) searchSimilar(ctx context.Context, query string, limit int) ([]ranking.VectorCandidate, error) {
	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	chunks, err := e.chunks.SelectChunksBySimilarity(ctx, queryEmbedding, limit)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	candidates := make([]ranking.VectorCandidate, 0, len(chunks))
	for _, chunk := range chunks {
		var similarity float64
		if chunk.Similarity != nil {
			similarity = *chunk.Similarity
		}
		candidates = append(candidates, ranking.VectorCandidate{
			Chunk:      chunk,
			Similarity: similarity,
		})
	}

	return candidates, nil
}

// fusedCandidates searches every subquery with a reduced limit and fuses
// the result lists with reciprocal rank fusion, so chunks matching several
// subqueries rise to the top without any one list dominating.
func (e *Engine) fusedCandidates(ctx context.Context, subqueries []string, topK int) ([]ranking.VectorCandidate, error) {
	perLimit := topK * 6 / 10
	if perLimit < 4 {
		perLimit = 4
	}

	fused := make(map[uuid.UUID]*ranking.VectorCandidate)
	var order []uuid.UUID

	for _, subquery := range subqueries {
		candidates, err := e.searchSimilar(ctx, subquery, perLimit)
		if err != nil {
			return nil, err
		}

		for rank, candidate := range candidates {
			score := 1.0 / float64(rrfK+rank+1)
			if existing, ok := fused[candidate.Chunk.ID]; ok {
				existing.Similarity += score
				continue
			}
			fused[candidate.Chunk.ID] = &ranking.VectorCandidate{
				Chunk:      candidate.Chunk,
				Similarity: score,
			}
			order = append(order, candidate.Chunk.ID)
		}
	}

	results := make([]ranking.VectorCandidate, 0, len(fused))
	for _, id := range order {
		results = append(results, *fused[id])
	}

	e.logger.Debug("Fused multi-query results",
		slog.Int("subqueries", len(subqueries)),
		slog.Int("per_query_limit", perLimit),
		slog.Int("fused", len(results)),
	)

	return results, nil
}

// expandSeeds traverses the graph from the vector seeds and materializes
// the chunks that were reached via graph only.
func (e *Engine) expandSeeds(ctx context.Context, vector []ranking.VectorCandidate) (map[uuid.UUID]float64, map[uuid.UUID]*model.Chunk, error) {
	seen := make(map[uuid.UUID]bool, len(vector))
	seeds := make([]uuid.UUID, 0, len(vector))
	for _, candidate := range vector {
		if seen[candidate.Chunk.ID] {
			continue
		}
		seen[candidate.Chunk.ID] = true
		seeds = append(seeds, candidate.Chunk.ID)
	}

	store := &graphStore{chunks: e.chunks, edges: e.edges}
	scores, err := graph.Expand(ctx, store, seeds, e.config)
	if err != nil {
		return nil, nil, errors.Join(model.ErrGraphExpansionFailed, err)
	}

	var missing []uuid.UUID
	for id, score := range scores {
		if score > 0 && !seen[id] {
			missing = append(missing, id)
		}
	}

	graphChunks, err := e.chunks.SelectChunksByIDs(ctx, missing)
	if err != nil {
		return nil, nil, errors.Join(model.ErrGraphExpansionFailed, err)
	}

	return scores, graphChunks, nil
}

// splitQuery splits a multi-part query on the separator and drops empty parts
func splitQuery(query string) []string {
	if !strings.Contains(query, multiQuerySeparator) {
		return []string{query}
	}

	var parts []string
	for _, part := range strings.Split(query, multiQuerySeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
