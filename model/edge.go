package model

import (
	"time"

	"github.com/google/uuid"
)

// EdgeType represents the type of relationship between knowledge entities
type EdgeType string

const (
	EdgeTypeReference EdgeType = "reference"
	EdgeTypePartOf    EdgeType = "part_of"
	EdgeTypeRelatedTo EdgeType = "related_to"
	EdgeTypeCustom    EdgeType = "custom"
)

// RelationshipEdge represents a directed, typed link between a chunk and
// another chunk or a whole document. Exactly one of TargetChunkID and
// TargetDocumentID is set. Edges are never mutated by the search path.
type RelationshipEdge struct {
	ID               uuid.UUID  `json:"id"`
	SourceChunkID    uuid.UUID  `json:"source_chunk_id"`
	TargetChunkID    *uuid.UUID `json:"target_chunk_id,omitempty"`
	TargetDocumentID *uuid.UUID `json:"target_document_id,omitempty"`
	EdgeType         EdgeType   `json:"edge_type"`
	Weight           float64    `json:"weight"`
	Metadata         Metadata   `json:"metadata,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
