package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
	loadSql "github.com/sgtdali/mcp-RAGON/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	DeleteChunk(id uuid.UUID) error
	SelectChunk(ctx context.Context, id uuid.UUID) (*model.Chunk, error)
	SelectChunksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Chunk, error)
	SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk schema functions and creates the chunks table with the
// given embedding dimension. The dimension is fixed once the table exists.
func NewChunksDBHandler(db *helper.Database, embeddingDim int) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", slog.Int("embedding_dim", embeddingDim))

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with the configured embedding
// dimension. If the table already exists, it does not create it again.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	if chunk.Metadata == nil {
		chunk.Metadata = model.Metadata{}
	}

	row := h.db.Instance.QueryRow(
		`INSERT INTO chunks (document_id, content, embedding, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		chunk.DocumentID,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
	}

	return nil
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`DELETE FROM chunks WHERE id = $1`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", errors.Join(model.ErrStoreUnavailable, err))
	}
	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT c.id, c.document_id, c.content, c.metadata, c.created_at, d.source
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.id = $1`,
		id,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.Content,
		&chunk.Metadata,
		&chunk.CreatedAt,
		&chunk.SourcePath,
	)
	if err != nil {
		return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
	}

	return chunk, nil
}

// SelectChunksByIDs retrieves multiple chunks by ID in one round trip.
// IDs that no longer exist in the store are simply absent from the result,
// so stale graph references never surface as candidates.
func (h *ChunksDBHandler) SelectChunksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Chunk, error) {
	chunks := make(map[uuid.UUID]*model.Chunk, len(ids))
	if len(ids) == 0 {
		return chunks, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT c.id, c.document_id, c.content, c.metadata, c.created_at, d.source
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 WHERE c.id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, helper.NewError("query", errors.Join(model.ErrStoreUnavailable, err))
	}
	defer rows.Close()

	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Content,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.SourcePath,
		)
		if err != nil {
			return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
		}

		chunks[chunk.ID] = chunk
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", errors.Join(model.ErrStoreUnavailable, err))
	}

	return chunks, nil
}

// SelectChunkIDsByDocument retrieves the IDs of all chunks of a document
func (h *ChunksDBHandler) SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT id FROM chunks WHERE document_id = $1 ORDER BY id`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", errors.Join(model.ErrStoreUnavailable, err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
		}
		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", errors.Join(model.ErrStoreUnavailable, err))
	}

	return ids, nil
}

// SelectChunksBySimilarity performs cosine similarity search against the
// stored embeddings. Results are ordered by descending similarity and
// limited to at most limit rows. An empty store yields an empty result.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int) ([]*model.Chunk, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT c.id, c.document_id, c.content, c.metadata, c.created_at, d.source,
		        1 - (c.embedding <=> $1) AS similarity
		 FROM chunks c
		 JOIN documents d ON d.id = c.document_id
		 ORDER BY c.embedding <=> $1, c.id
		 LIMIT $2`,
		embeddingVector,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", errors.Join(model.ErrStoreUnavailable, err))
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Content,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.SourcePath,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", errors.Join(model.ErrStoreUnavailable, err))
	}

	return results, nil
}
