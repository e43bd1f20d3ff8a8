package domain

import "fmt"

// SearchFilters restricts semantic search to chunks matching structured
// attribute predicates. ContentType and MajorTopic are equality matches;
// ApplicableCohort and SpecificTarget are case-insensitive substring matches
// (cohort strings enumerate ranges like "cohort 2023 and earlier", so exact
// equality would miss most of them). The zero value matches everything.
type SearchFilters struct {
	ContentType      string
	MajorTopic       string
	ApplicableCohort string
	SpecificTarget   string
}

// IsEmpty reports whether no predicate is set.
func (f SearchFilters) IsEmpty() bool {
	return f == SearchFilters{}
}

// SearchHit is a single retrieval result: a chunk joined with its parent
// document attributes and annotated with a relevance score. For semantic
// search the score is cosine similarity in [0,1]; for keyword search it is
// the text-relevance rank. Equal scores are ordered by ascending ChunkID.
type SearchHit struct {
	Chunk    Chunk
	Document Document
	Score    float64
}

// ValidateLimit normalizes a result limit against defaults and a cap.
func ValidateLimit(limit, def, max int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("limit must be non-negative, got %d: %w", limit, ErrValidation)
	}
	if limit == 0 {
		return def, nil
	}
	if limit > max {
		return max, nil
	}
	return limit, nil
}
