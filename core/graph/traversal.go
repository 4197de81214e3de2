// Package graph implements the deep-search expansion: a bounded
// breadth-first traversal over typed relationship edges that assigns each
// reached chunk an accumulated graph score.
package graph

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sgtdali/mcp-RAGON/model"
)

// Store defines the store operations the traversal needs
type Store interface {
	SelectEdgesFromChunks(ctx context.Context, chunkIDs []uuid.UUID) ([]*model.RelationshipEdge, error)
	SelectChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]uuid.UUID, error)
}

// Expand walks outbound relationship edges breadth-first from the seed set
// up to config.MaxGraphDepth and returns a mapping from chunk ID to
// accumulated graph score. Depth 0 are the seeds themselves (score 0).
//
// A node reached at depth d through an edge contributes
// edgeTypeWeight * edgeWeight * decay(d); when a node is reachable via
// multiple paths it keeps the maximum path score, not the sum, so densely
// interlinked but not-more-relevant nodes are not rewarded. Every node is
// expanded at most once (visited set), which guarantees termination on
// cyclic graphs. Edges targeting a whole document expand to that
// document's chunks at the same depth and score.
//
// The frontier is processed in ascending chunk ID order at every depth so
// traversal output is reproducible for identical inputs.
func Expand(ctx context.Context, store Store, seedIDs []uuid.UUID, config *model.SearchConfig) (map[uuid.UUID]float64, error) {
	scores := make(map[uuid.UUID]float64, len(seedIDs))
	visitedDocs := make(map[uuid.UUID]bool)

	var frontier []uuid.UUID
	for _, id := range seedIDs {
		if _, ok := scores[id]; ok {
			continue
		}
		scores[id] = 0
		frontier = append(frontier, id)
	}

	for depth := 1; depth <= config.MaxGraphDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sortIDs(frontier)

		edges, err := store.SelectEdgesFromChunks(ctx, frontier)
		if err != nil {
			return nil, err
		}

		decay := config.Decay(depth)
		var next []uuid.UUID

		for _, edge := range edges {
			contribution := config.EdgeWeight(edge.EdgeType) * edge.Weight * decay

			var targets []uuid.UUID
			switch {
			case edge.TargetChunkID != nil:
				targets = []uuid.UUID{*edge.TargetChunkID}
			case edge.TargetDocumentID != nil:
				if visitedDocs[*edge.TargetDocumentID] {
					continue
				}
				visitedDocs[*edge.TargetDocumentID] = true
				targets, err = store.SelectChunkIDsByDocument(ctx, *edge.TargetDocumentID)
				if err != nil {
					return nil, err
				}
			default:
				continue
			}

			for _, target := range targets {
				if target == edge.SourceChunkID {
					continue
				}

				existing, seen := scores[target]
				if !seen {
					scores[target] = contribution
					next = append(next, target)
					continue
				}

				// Already visited at a shallower depth or via another
				// path at this depth: keep the maximum path score, but
				// never enqueue again.
				if contribution > existing {
					scores[target] = contribution
				}
			}
		}

		frontier = next
	}

	return scores, nil
}

func sortIDs(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
}
