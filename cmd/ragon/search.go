package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	ragon "github.com/sgtdali/mcp-RAGON"
	"github.com/sgtdali/mcp-RAGON/embedding"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
)

// openAIEmbeddingDim is the output dimension of text-embedding-3-small
const openAIEmbeddingDim = 1536

var (
	topK       int
	deepSearch bool
	localModel bool

	searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Search the knowledge store",
		Long: `Search the knowledge store for chunks matching the query.

With --deep the similarity results are expanded through the relationship
graph and merged by the configured vector and graph weights. Multiple
subqueries can be combined in one query with "||".`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
)

func init() {
	searchCmd.Flags().IntVar(&topK, "top-k", 0, "number of similarity seeds (0 = configured default)")
	searchCmd.Flags().BoolVar(&deepSearch, "deep", false, "expand results through the relationship graph")
	searchCmd.Flags().BoolVar(&localModel, "local", false, "embed with the local ONNX model instead of the OpenAI API")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	searchConfig, err := model.LoadSearchConfig(searchConfigFile)
	if err != nil {
		return err
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return err
	}

	embedder, embeddingDim, err := newEmbedder()
	if err != nil {
		return err
	}
	if closer, ok := embedder.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	r, err := ragon.NewRagon(dbConfig, embedder, embeddingDim, searchConfig)
	if err != nil {
		return err
	}
	defer r.Close()

	var response *model.SearchResponse
	if deepSearch {
		response, err = r.DeepSearch(cmd.Context(), query, topK)
	} else {
		response, err = r.Search(cmd.Context(), query, topK)
	}
	if err != nil {
		return err
	}

	printResponse(response)
	return nil
}

// newEmbedder builds the configured embedder wrapped in a circuit breaker
func newEmbedder() (embedding.Embedder, int, error) {
	if localModel {
		local, err := embedding.NewLocalEmbedder()
		if err != nil {
			return nil, 0, err
		}
		return local, embedding.LocalEmbedderDim, nil
	}

	openAI, err := embedding.NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return nil, 0, err
	}
	return embedding.NewBreaker(openAI, "openai-embeddings", nil), openAIEmbeddingDim, nil
}

func printResponse(response *model.SearchResponse) {
	if response.Degraded {
		fmt.Println("warning: graph expansion failed, showing vector results only")
	}
	for _, warning := range response.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	if len(response.Results) == 0 {
		fmt.Println("no results")
		return
	}

	for i, result := range response.Results {
		fmt.Printf("%2d. [%.4f] (%s) %s\n", i+1, result.Score, result.Provenance, result.Chunk.ID)
		if result.Chunk.SourcePath != "" {
			fmt.Printf("    source: %s\n", result.Chunk.SourcePath)
		}
		content := result.Chunk.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Printf("    %s\n", content)
	}
}
