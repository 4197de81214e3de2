package retrieval

// SearchOptions carries the per-query knobs of a search request.
// The zero value means "use the configured defaults, vector-only".
type SearchOptions struct {
	// TopK is the requested number of similarity seeds. Values <= 0 fall
	// back to the configured default; values above the configured maximum
	// are clamped to it.
	TopK int
	// DeepSearch enables graph expansion from the similarity seeds.
	DeepSearch bool
}
