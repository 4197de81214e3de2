package main

import (
	"context"
	"fmt"
	"log"

	ragon "github.com/sgtdali/mcp-RAGON"
	"github.com/sgtdali/mcp-RAGON/embedding"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Local ONNX embedder, no API key needed (downloads the model on first run)
	embedder, err := embedding.NewLocalEmbedder()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	defer embedder.Close()

	r, err := ragon.NewRagon(dbConfig, embedder, embedding.LocalEmbedderDim, nil)
	if err != nil {
		log.Fatalf("Failed to create ragon: %v", err)
	}
	defer r.Close()

	// Insert two small documents
	vectorDoc := &model.Document{
		Title:  "Vector Search",
		Source: "docs/vector_search.md",
	}
	graphDoc := &model.Document{
		Title:  "Graph Traversal",
		Source: "docs/graph_traversal.md",
	}
	for _, doc := range []*model.Document{vectorDoc, graphDoc} {
		if err := r.Documents.InsertDocument(doc); err != nil {
			log.Fatalf("Failed to insert document: %v", err)
		}
	}

	contents := map[*model.Document][]string{
		vectorDoc: {
			"Vector search finds chunks whose embeddings are close to the query embedding.",
			"Cosine similarity compares the angle between two embedding vectors.",
		},
		graphDoc: {
			"Graph traversal follows typed relationship edges between chunks.",
			"Deep search combines vector seeds with graph expansion for better recall.",
		},
	}

	fmt.Println("Ingesting documents...")
	var chunks []*model.Chunk
	for doc, texts := range contents {
		for _, text := range texts {
			vector, err := embedder.Embed(context.Background(), text)
			if err != nil {
				log.Fatalf("Failed to embed chunk: %v", err)
			}
			chunk := &model.Chunk{
				DocumentID: doc.ID,
				Content:    text,
				Embedding:  vector,
			}
			if err := r.Chunks.InsertChunk(chunk); err != nil {
				log.Fatalf("Failed to insert chunk: %v", err)
			}
			chunks = append(chunks, chunk)
		}
	}
	fmt.Printf("Inserted %d chunks\n", len(chunks))

	// Link the first vector chunk to the graph document, so deep search can
	// pull in the graph chunks even when they are not similar to the query.
	edge := &model.RelationshipEdge{
		SourceChunkID:    chunks[0].ID,
		TargetDocumentID: &graphDoc.ID,
		EdgeType:         model.EdgeTypeRelatedTo,
		Weight:           0.8,
	}
	if err := r.Edges.InsertEdge(edge); err != nil {
		log.Fatalf("Failed to insert edge: %v", err)
	}

	queryText := "How does vector search work?"
	fmt.Printf("\nQuerying: %s\n", queryText)

	response, err := r.DeepSearch(context.Background(), queryText, 5)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nFound %d results:\n", len(response.Results))
	for i, result := range response.Results {
		fmt.Printf("\n--- Result %d ---\n", i+1)
		fmt.Printf("Score: %.4f (similarity %.4f, graph %.4f)\n", result.Score, result.SimilarityScore, result.GraphScore)
		fmt.Printf("Provenance: %s\n", result.Provenance)
		fmt.Printf("Source: %s\n", result.Chunk.SourcePath)
		fmt.Printf("Content: %s\n", result.Chunk.Content)
	}

	fmt.Println("\nBasic example completed successfully!")
}
