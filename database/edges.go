package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
	loadSql "github.com/sgtdali/mcp-RAGON/sql"
)

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	InsertEdge(edge *model.RelationshipEdge) error
	SelectEdgesFromChunk(ctx context.Context, chunkID uuid.UUID) ([]*model.RelationshipEdge, error)
	SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error)
	DeleteEdge(id uuid.UUID) error
}

// EdgesDBHandler handles relationship edge database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It loads the edges schema if it does not exist yet.
func NewEdgesDBHandler(db *helper.Database) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// InsertEdge inserts a new relationship edge. Exactly one of TargetChunkID
// and TargetDocumentID must be set; the schema enforces this.
func (h *EdgesDBHandler) InsertEdge(edge *model.RelationshipEdge) error {
	if edge.Metadata == nil {
		edge.Metadata = model.Metadata{}
	}
	if edge.Weight == 0 {
		edge.Weight = 1.0
	}

	row := h.db.Instance.QueryRow(
		`INSERT INTO edges (source_chunk_id, target_chunk_id, target_document_id, edge_type, weight, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		edge.SourceChunkID,
		edge.TargetChunkID,
		edge.TargetDocumentID,
		edge.EdgeType,
		edge.Weight,
		edge.Metadata,
	)

	err := row.Scan(
		&edge.ID,
		&edge.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
	}

	return nil
}

// SelectEdgesFromChunk retrieves all outbound edges of a chunk
func (h *EdgesDBHandler) SelectEdgesFromChunk(ctx context.Context, chunkID uuid.UUID) ([]*model.RelationshipEdge, error) {
	return h.SelectEdgesFromChunks(ctx, []uuid.UUID{chunkID})
}

// SelectEdgesFromChunks retrieves all outbound edges of a set of chunks in
// one round trip, ordered deterministically by source and target.
func (h *EdgesDBHandler) SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT id, source_chunk_id, target_chunk_id, target_document_id, edge_type, weight, metadata, created_at
		 FROM edges
		 WHERE source_chunk_id = ANY($1)
		 ORDER BY source_chunk_id, target_chunk_id, target_document_id`,
		pq.Array(chunkIDs),
	)
	if err != nil {
		return nil, helper.NewError("query", errors.Join(model.ErrStoreUnavailable, err))
	}
	defer rows.Close()

	var edges []*model.RelationshipEdge
	for rows.Next() {
		edge := &model.RelationshipEdge{}

		err := rows.Scan(
			&edge.ID,
			&edge.SourceChunkID,
			&edge.TargetChunkID,
			&edge.TargetDocumentID,
			&edge.EdgeType,
			&edge.Weight,
			&edge.Metadata,
			&edge.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", errors.Join(model.ErrStoreUnavailable, err))
	}

	return edges, nil
}

// DeleteEdge deletes an edge by ID
func (h *EdgesDBHandler) DeleteEdge(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`DELETE FROM edges WHERE id = $1`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", errors.Join(model.ErrStoreUnavailable, err))
	}
	return nil
}
