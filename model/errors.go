package model

import "errors"

// Error kinds surfaced by the search path. Fatal kinds propagate to the
// caller as a single structured failure; ErrGraphExpansionFailed is
// recovered by the orchestrator, which degrades to pure vector results.
var (
	// ErrEmbeddingUnavailable is returned when the embedding provider fails,
	// times out or rate-limits. Fatal to the query.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStoreUnavailable is returned on knowledge store connectivity or
	// query failure during the seed-search phase. Fatal to the query.
	ErrStoreUnavailable = errors.New("knowledge store unavailable")

	// ErrGraphExpansionFailed is returned when traversal or candidate
	// materialization fails after seeds were obtained.
	ErrGraphExpansionFailed = errors.New("graph expansion failed")

	// ErrDegenerateConfig is returned when both ranking weights are zero.
	// A meaningless ranking is worse than a visible failure.
	ErrDegenerateConfig = errors.New("degenerate search configuration")

	// ErrEmptyQuery is returned when the query text is empty.
	ErrEmptyQuery = errors.New("query must not be empty")
)
