package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Keyword cardinality bounds for a chunk. Extraction is asked for 3-8;
// MinKeywords is advisory (logged, not rejected), MaxKeywords is enforced
// by truncation during normalization.
const (
	MinKeywords = 3
	MaxKeywords = 8
)

// Chunk is a self-contained, independently interpretable segment of a
// document's text: the unit of embedding and retrieval. ChunkText is the only
// field that enters the vector space, so retrieval quality depends entirely
// on its standalone interpretability.
type Chunk struct {
	ChunkID          string
	DocID            string
	PageNumber       *int
	SectionTitle     *string
	ChunkTopic       *string
	ContentType      *string
	SpecificTarget   *string
	ApplicableCohort *string
	Value            *string // numeric magnitude or a label such as "free of charge"
	Unit             *string
	Keywords         []string
	ChunkText        string
	Embedding        []float32
	EmbeddingModel   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the chunk invariants:
// identifiers present and well-formed, chunk_text non-empty, no duplicate
// keywords, and unit present iff value is present and numeric (a non-numeric
// label value may omit the unit).
func (c *Chunk) Validate() error {
	if c.ChunkID == "" {
		return fmt.Errorf("chunk_id is required: %w", ErrValidation)
	}
	if _, err := uuid.Parse(c.ChunkID); err != nil {
		return fmt.Errorf("chunk_id %q is not a valid UUID: %w", c.ChunkID, ErrValidation)
	}
	if c.DocID == "" {
		return fmt.Errorf("chunk %s: doc_id is required: %w", c.ChunkID, ErrValidation)
	}
	if c.ChunkText == "" {
		return fmt.Errorf("chunk %s: chunk_text is required: %w", c.ChunkID, ErrValidation)
	}
	if len(c.Keywords) > MaxKeywords {
		return fmt.Errorf("chunk %s: too many keywords (%d, max %d): %w",
			c.ChunkID, len(c.Keywords), MaxKeywords, ErrValidation)
	}
	seen := make(map[string]bool, len(c.Keywords))
	for _, k := range c.Keywords {
		if seen[k] {
			return fmt.Errorf("chunk %s: duplicate keyword %q: %w", c.ChunkID, k, ErrValidation)
		}
		seen[k] = true
	}
	return c.validateValueUnit()
}

func (c *Chunk) validateValueUnit() error {
	if c.Value == nil {
		if c.Unit != nil {
			return fmt.Errorf("chunk %s: unit %q without value: %w", c.ChunkID, *c.Unit, ErrValidation)
		}
		return nil
	}
	if _, numeric := c.NumericValue(); numeric && c.Unit == nil {
		return fmt.Errorf("chunk %s: numeric value %q without unit: %w", c.ChunkID, *c.Value, ErrValidation)
	}
	// Non-numeric labels ("free of charge") may omit the unit.
	return nil
}

// NumericValue parses Value as a number. The second return is false when
// Value is absent or a non-numeric label.
func (c *Chunk) NumericValue() (float64, bool) {
	if c.Value == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(*c.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
