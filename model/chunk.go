package model

import (
	"time"

	"github.com/google/uuid"
)

// Provenance describes how a candidate was discovered during a search
type Provenance string

const (
	ProvenanceVector Provenance = "vector"
	ProvenanceGraph  Provenance = "graph"
	ProvenanceBoth   Provenance = "both"
)

// Chunk represents an atomic unit of retrievable knowledge (node in the graph).
// Chunks are created at ingestion time and are read-only to the search path.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Results
	Similarity *float64 `json:"similarity,omitempty"` // Only set on similarity search results
	SourcePath string   `json:"source_path,omitempty"`
}
