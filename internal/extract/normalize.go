package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/domain"
)

// nullSentinels are string forms that extraction backends emit for "absent"
// despite instructions. They normalize to unset, so the ambiguity between
// unset and empty string cannot reach storage.
var nullSentinels = map[string]bool{"": true, "null": true, "none": true, "n/a": true}

// Plausible issue-year window for the content heuristic. Dates outside it are
// logged, not rejected: a schema-valid but implausible date is a content
// error, which is detected only heuristically.
const (
	minPlausibleYear     = 1990
	maxPlausibleYearSkew = 20
)

// Normalizer turns raw extraction payloads into validated domain entities.
type Normalizer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewNormalizer creates a payload normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger, now: time.Now}
}

// Normalize validates and converts one extraction payload.
// Hard schema violations (missing title or chunk_text, malformed dates,
// broken value/unit coordination) return an error wrapping
// domain.ErrValidation; soft content issues are logged and repaired.
// fileName always wins over whatever the backend returned, and missing
// identifiers are generated here: extraction time is the one place doc_id
// and chunk_id come into existence.
func (n *Normalizer) Normalize(p Payload, fileName string) (domain.Document, []domain.Chunk, error) {
	doc, err := n.normalizeDocument(p.DocumentMetadata, fileName)
	if err != nil {
		return domain.Document{}, nil, err
	}

	if len(p.ChunkMetadata) == 0 {
		return domain.Document{}, nil, fmt.Errorf("document %s: no chunks extracted: %w",
			fileName, domain.ErrValidation)
	}

	chunks := make([]domain.Chunk, 0, len(p.ChunkMetadata))
	for i, cm := range p.ChunkMetadata {
		chunk, err := n.normalizeChunk(cm, doc.DocID)
		if err != nil {
			return domain.Document{}, nil, fmt.Errorf("chunk %d of %s: %w", i, fileName, err)
		}
		chunks = append(chunks, chunk)
	}

	return doc, chunks, nil
}

func (n *Normalizer) normalizeDocument(m DocumentMeta, fileName string) (domain.Document, error) {
	doc := domain.Document{
		DocID:            normalizeID(m.DocID),
		FileName:         fileName, // enforced post-hoc regardless of backend output
		Title:            derefClean(m.Title),
		DocType:          cleanOptional(m.DocType),
		IssueNumber:      cleanOptional(m.IssueNumber),
		IssuingAuthority: cleanOptional(m.IssuingAuthority),
		IssuingDept:      cleanOptional(m.IssuingDept),
		EffectiveDate:    cleanOptional(m.EffectiveDate),
		MajorTopic:       cleanOptional(m.MajorTopic),
	}

	if got := cleanOptional(m.FileName); got != nil && *got != fileName {
		n.logger.Warn("extraction returned a different file_name, overriding",
			zap.String("returned", *got), zap.String("actual", fileName))
	}

	var err error
	if doc.IssueDate, err = n.parseDate(m.IssueDate, "issue_date"); err != nil {
		return domain.Document{}, err
	}
	if doc.ExpirationDate, err = n.parseDate(m.ExpirationDate, "expiration_date"); err != nil {
		return domain.Document{}, err
	}

	if err := doc.Validate(); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (n *Normalizer) normalizeChunk(m ChunkMeta, docID string) (domain.Chunk, error) {
	chunk := domain.Chunk{
		ChunkID:          normalizeID(m.ChunkID),
		DocID:            docID,
		PageNumber:       m.PageNumber,
		SectionTitle:     cleanOptional(m.SectionTitle),
		ChunkTopic:       cleanOptional(m.ChunkTopic),
		ContentType:      cleanOptional(m.ContentType),
		SpecificTarget:   cleanOptional(m.SpecificTarget),
		ApplicableCohort: cleanOptional(m.ApplicableCohort),
		Unit:             cleanOptional(m.Unit),
		Keywords:         n.normalizeKeywords(m.Keywords, normalizeID(m.ChunkID)),
		ChunkText:        strings.TrimSpace(m.ChunkText),
	}

	if m.Value != nil {
		if v := strings.TrimSpace(m.Value.Text); !nullSentinels[strings.ToLower(v)] {
			chunk.Value = &v
		}
	}

	// chunk_topic must not restate content_type; drop the redundant copy.
	if chunk.ChunkTopic != nil && chunk.ContentType != nil &&
		strings.EqualFold(*chunk.ChunkTopic, *chunk.ContentType) {
		n.logger.Warn("chunk_topic restates content_type, dropping",
			zap.String("chunk_id", chunk.ChunkID), zap.String("topic", *chunk.ChunkTopic))
		chunk.ChunkTopic = nil
	}

	if err := chunk.Validate(); err != nil {
		return domain.Chunk{}, err
	}
	return chunk, nil
}

// normalizeKeywords lowercases, trims, deduplicates, and caps the keyword
// set. Cardinality outside 3-8 is repaired or logged, never fatal.
func (n *Normalizer) normalizeKeywords(raw []string, chunkID string) []string {
	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if nullSentinels[k] || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	if len(keywords) > domain.MaxKeywords {
		n.logger.Warn("truncating keywords",
			zap.String("chunk_id", chunkID), zap.Int("count", len(keywords)))
		keywords = keywords[:domain.MaxKeywords]
	}
	if len(keywords) < domain.MinKeywords {
		n.logger.Warn("fewer keywords than requested",
			zap.String("chunk_id", chunkID), zap.Int("count", len(keywords)))
	}
	return keywords
}

// parseDate parses an ISO-8601 date and runs the plausibility heuristic.
func (n *Normalizer) parseDate(raw *string, field string) (*time.Time, error) {
	s := cleanOptional(raw)
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not an ISO-8601 date: %w", field, *s, domain.ErrValidation)
	}
	if t.Year() < minPlausibleYear || t.Year() > n.now().Year()+maxPlausibleYearSkew {
		n.logger.Warn("date outside plausible range",
			zap.String("field", field), zap.String("value", *s))
	}
	return &t, nil
}

// normalizeID keeps a backend-provided UUID or generates a fresh one.
func normalizeID(raw *string) string {
	if raw != nil {
		if id, err := uuid.Parse(strings.TrimSpace(*raw)); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

// cleanOptional trims a value and maps null-like sentinels to unset.
func cleanOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if nullSentinels[strings.ToLower(s)] {
		return nil
	}
	return &s
}

func derefClean(raw *string) string {
	if s := cleanOptional(raw); s != nil {
		return *s
	}
	return ""
}
