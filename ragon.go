package ragon

import (
	"context"
	"log/slog"
	"os"

	"github.com/sgtdali/mcp-RAGON/core/retrieval"
	"github.com/sgtdali/mcp-RAGON/database"
	"github.com/sgtdali/mcp-RAGON/embedding"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
	loadSql "github.com/sgtdali/mcp-RAGON/sql"
)

// Ragon provides a unified interface to the knowledge store handlers and
// the hybrid search engine
type Ragon struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Edges     *database.EdgesDBHandler
	Embedder  embedding.Embedder
	Engine    *retrieval.Engine
	// Logging
	log *slog.Logger
}

// NewRagon creates a new Ragon instance with all handlers initialized.
// The embedding dimension is fixed once the chunks table exists; pass the
// dimension of the embedder's model (for example embedding.LocalEmbedderDim).
// A nil searchConfig uses model.DefaultSearchConfig.
func NewRagon(dbConfig *helper.DatabaseConfiguration, embedder embedding.Embedder, embeddingDim int, searchConfig *model.SearchConfig) (*Ragon, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("ragon", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (documents first, then chunks)
	documents, err := database.NewDocumentsDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	engine, err := retrieval.NewEngine(chunks, edges, embedder, searchConfig, logger)
	if err != nil {
		return nil, helper.NewError("create retrieval engine", err)
	}

	return &Ragon{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Edges:     edges,
		Embedder:  embedder,
		Engine:    engine,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (r *Ragon) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}

// Search performs vector-only retrieval for a query. topK <= 0 uses the
// configured default seed count.
func (r *Ragon) Search(ctx context.Context, query string, topK int) (*model.SearchResponse, error) {
	return r.Engine.Search(ctx, query, retrieval.SearchOptions{TopK: topK})
}

// DeepSearch performs hybrid retrieval: vector seeds expanded through the
// relationship graph and merged by the configured weights. If the graph
// expansion fails the response falls back to vector results with the
// Degraded flag set.
func (r *Ragon) DeepSearch(ctx context.Context, query string, topK int) (*model.SearchResponse, error) {
	return r.Engine.Search(ctx, query, retrieval.SearchOptions{TopK: topK, DeepSearch: true})
}

// SearchWithOptions performs retrieval with fully explicit options
func (r *Ragon) SearchWithOptions(ctx context.Context, query string, opts retrieval.SearchOptions) (*model.SearchResponse, error) {
	return r.Engine.Search(ctx, query, opts)
}
