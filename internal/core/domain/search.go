package domain

// DefaultSearchLimit is the number of results returned when no limit is set.
const DefaultSearchLimit = 20

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// Limit is the maximum number of results (default 20).
	Limit int

	// SourceID restricts the search to one source. Empty searches all sources.
	SourceID string
}

// EffectiveLimit returns Limit, or DefaultSearchLimit when Limit is not positive.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit <= 0 {
		return DefaultSearchLimit
	}
	return o.Limit
}

// SearchResult represents a single similarity hit.
type SearchResult struct {
	// Content is the matched chunk text.
	Content string `json:"content"`

	// Score is the cosine similarity between the query and the chunk.
	Score float64 `json:"score"`

	// SourceID is the source the chunk belongs to.
	SourceID string `json:"sourceId"`

	// Index is the chunk position within its source.
	Index int `json:"index"`
}
