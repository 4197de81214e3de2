package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/sgtdali/mcp-RAGON/helper"
	"github.com/sgtdali/mcp-RAGON/model"
)

// LocalEmbedderDim is the output dimension of the bundled sentence
// transformer model (all-MiniLM-L6-v2).
const LocalEmbedderDim = 384

// LocalEmbedder generates embeddings with a local ONNX sentence transformer
// model. It needs no API credential and is useful for development and for
// deployments without an external embedding provider.
type LocalEmbedder struct {
	session *hugot.Session
	embed   func(text string) ([]float32, error)
}

// NewLocalEmbedder downloads the all-MiniLM-L6-v2 model if needed and
// initializes a hugot feature extraction pipeline
func NewLocalEmbedder() (*LocalEmbedder, error) {
	modelPath, err := prepareModel("sentence-transformers/all-MiniLM-L6-v2")
	if err != nil {
		return nil, helper.NewError("prepare embedding model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "ragon-embedder",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewError("create feature extraction pipeline", errors.Join(err, destroyErr))
		}
		return nil, helper.NewError("create feature extraction pipeline", err)
	}

	embed := func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, err
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}

	return &LocalEmbedder{
		session: session,
		embed:   embed,
	}, nil
}

// Embed generates the embedding for a single text
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, helper.NewError("embed", fmt.Errorf("text must not be empty"))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embedding, err := e.embed(text)
	if err != nil {
		return nil, helper.NewError("embed", errors.Join(model.ErrEmbeddingUnavailable, err))
	}

	return embedding, nil
}

// Close destroys the underlying hugot session
func (e *LocalEmbedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// prepareModel downloads the model if it doesn't exist and returns the model path
func prepareModel(modelName string) (string, error) {
	modelDir := "./models"
	modelPath := filepath.Join(modelDir, "sentence-transformers_all-MiniLM-L6-v2")

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
}
