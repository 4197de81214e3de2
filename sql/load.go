package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed init.sql
var initSQL string

//go:embed documents.sql
var documentsSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed edges.sql
var edgesSQL string

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// LoadDocumentsSql creates the documents table and its indexes
func LoadDocumentsSql(db *sql.DB) error {
	_, err := db.Exec(documentsSQL)
	if err != nil {
		return fmt.Errorf("error executing documents SQL: %w", err)
	}
	return nil
}

// LoadChunksSql loads the init_chunks function. The chunks table itself is
// created by calling init_chunks with the configured embedding dimension.
func LoadChunksSql(db *sql.DB) error {
	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}
	return nil
}

// LoadEdgesSql creates the edge_type enum, the edges table and its indexes
func LoadEdgesSql(db *sql.DB) error {
	_, err := db.Exec(edgesSQL)
	if err != nil {
		return fmt.Errorf("error executing edges SQL: %w", err)
	}
	return nil
}
