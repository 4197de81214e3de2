package model

// ScoredCandidate represents a chunk scored during one search.
// It lives only for the duration of that search and is never persisted.
type ScoredCandidate struct {
	Chunk           *Chunk     `json:"chunk"`
	Score           float64    `json:"score"`            // Combined score from ranking
	SimilarityScore float64    `json:"similarity_score"` // Cosine similarity, 0 if not found via vector search
	GraphScore      float64    `json:"graph_score"`      // Accumulated traversal boost, 0 if not reached via graph
	Provenance      Provenance `json:"provenance"`
}

// SearchResponse is the final answer payload for one query
type SearchResponse struct {
	Results  []*ScoredCandidate `json:"results"`
	Degraded bool               `json:"degraded,omitempty"` // True if graph expansion failed and only vector results are returned
	Warnings []string           `json:"warnings,omitempty"`
}
