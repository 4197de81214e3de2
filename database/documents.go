package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
	loadSql "github.com/sgtdali/mcp-RAGON/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(document *model.Document) error
	SelectDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	DeleteDocument(id uuid.UUID) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It loads the documents schema if it does not exist yet.
func NewDocumentsDBHandler(db *helper.Database) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// InsertDocument inserts a new document
func (h *DocumentsDBHandler) InsertDocument(document *model.Document) error {
	if document.Metadata == nil {
		document.Metadata = model.Metadata{}
	}

	row := h.db.Instance.QueryRow(
		`INSERT INTO documents (title, source, metadata)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		document.Title,
		document.Source,
		document.Metadata,
	)

	err := row.Scan(
		&document.ID,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
	}

	return nil
}

// SelectDocument retrieves a document by ID
func (h *DocumentsDBHandler) SelectDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT id, title, source, metadata, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	)

	document := &model.Document{}
	err := row.Scan(
		&document.ID,
		&document.Title,
		&document.Source,
		&document.Metadata,
		&document.CreatedAt,
		&document.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", errors.Join(model.ErrStoreUnavailable, err))
	}

	return document, nil
}

// DeleteDocument deletes a document and cascades to its chunks
func (h *DocumentsDBHandler) DeleteDocument(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", errors.Join(model.ErrStoreUnavailable, err))
	}
	return nil
}
