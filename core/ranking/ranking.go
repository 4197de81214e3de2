// Package ranking merges vector-search candidates and graph-traversal
// scores into one deduplicated, deterministically ordered result list.
package ranking

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sgtdali/mcp-RAGON/model"
)

// VectorCandidate is a chunk found via similarity search together with its
// similarity signal. For multi-query searches the signal is the fused
// reciprocal-rank score instead of raw cosine similarity.
type VectorCandidate struct {
	Chunk      *model.Chunk
	Similarity float64
}

// Rank combines vector candidates and graph scores into a scored, merged,
// ordered candidate list:
//
//	score = vectorWeight * similarity + graphWeight * graphScore
//
// with 0 for the missing signal. Candidates found by both paths are tagged
// "both". The list is sorted by descending score with ties broken by
// ascending chunk ID, deduplicated, and truncated to config.ResultLimit.
// Graph-only candidates without a materialized chunk are dropped (stale
// references). Both weights zero is a degenerate configuration and yields
// model.ErrDegenerateConfig instead of an arbitrarily ordered list.
func Rank(vector []VectorCandidate, graphScores map[uuid.UUID]float64, graphChunks map[uuid.UUID]*model.Chunk, config *model.SearchConfig) ([]*model.ScoredCandidate, error) {
	if config.VectorWeight == 0 && config.GraphWeight == 0 {
		return nil, model.ErrDegenerateConfig
	}

	candidates := make(map[uuid.UUID]*model.ScoredCandidate, len(vector)+len(graphScores))

	for _, v := range vector {
		if v.Chunk == nil {
			continue
		}
		if existing, ok := candidates[v.Chunk.ID]; ok {
			if v.Similarity > existing.SimilarityScore {
				existing.SimilarityScore = v.Similarity
			}
			continue
		}
		candidates[v.Chunk.ID] = &model.ScoredCandidate{
			Chunk:           v.Chunk,
			SimilarityScore: v.Similarity,
			Provenance:      model.ProvenanceVector,
		}
	}

	for id, graphScore := range graphScores {
		if graphScore <= 0 {
			continue
		}
		if existing, ok := candidates[id]; ok {
			existing.GraphScore = graphScore
			existing.Provenance = model.ProvenanceBoth
			continue
		}
		chunk, ok := graphChunks[id]
		if !ok {
			continue
		}
		candidates[id] = &model.ScoredCandidate{
			Chunk:      chunk,
			GraphScore: graphScore,
			Provenance: model.ProvenanceGraph,
		}
	}

	results := make([]*model.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		candidate.Score = config.VectorWeight*candidate.SimilarityScore + config.GraphWeight*candidate.GraphScore
		results = append(results, candidate)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return strings.Compare(results[i].Chunk.ID.String(), results[j].Chunk.ID.String()) < 0
	})

	if len(results) > config.ResultLimit {
		results = results[:config.ResultLimit]
	}

	return results, nil
}
