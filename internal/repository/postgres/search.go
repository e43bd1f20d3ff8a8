package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/docdex-io/docdex/internal/domain"
)

const hitColumns = `
	c.chunk_id, c.doc_id, c.page_number, c.section_title, c.chunk_topic,
	c.content_type, c.specific_target, c.applicable_cohort, c.value, c.unit,
	c.keywords, c.chunk_text, c.embedding_model, c.created_at, c.updated_at,
	d.doc_id, d.file_name, d.title, d.doc_type, d.issue_number,
	d.issuing_authority, d.issuing_department, d.issue_date, d.effective_date,
	d.expiration_date, d.major_topic, d.created_at, d.updated_at`

// buildFilterClauses renders metadata filters as SQL predicates. Content
// type and major topic match exactly; cohort and target match as
// case-insensitive substrings. Placeholders continue from next.
func buildFilterClauses(f domain.SearchFilters, next int) (string, []any) {
	var clauses []string
	var args []any

	add := func(expr string, arg any) {
		clauses = append(clauses, fmt.Sprintf(expr, next))
		args = append(args, arg)
		next++
	}

	if f.ContentType != "" {
		add("c.content_type = $%d", f.ContentType)
	}
	if f.MajorTopic != "" {
		add("d.major_topic = $%d", f.MajorTopic)
	}
	if f.ApplicableCohort != "" {
		add("c.applicable_cohort ILIKE $%d", "%"+f.ApplicableCohort+"%")
	}
	if f.SpecificTarget != "" {
		add("c.specific_target ILIKE $%d", "%"+f.SpecificTarget+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// SemanticSearch ranks chunks by cosine similarity to the query vector.
// Only chunks embedded under the given model participate, so vectors from
// different embedding spaces never compete.
func (s *Store) SemanticSearch(ctx context.Context, query []float32, model string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	where, filterArgs := buildFilterClauses(filters, 4)

	q := `
		SELECT` + hitColumns + `,
			1 - (c.embedding <=> $1::vector) AS similarity
		FROM chunks c
		JOIN documents d ON d.doc_id = c.doc_id
		WHERE c.embedding IS NOT NULL AND c.embedding_model = $2` + where + `
		ORDER BY c.embedding <=> $1::vector ASC, c.chunk_id ASC
		LIMIT $3`

	args := append([]any{encodeVector(query), model, limit}, filterArgs...)
	return s.queryHits(ctx, "semantic search", q, args)
}

// KeywordSearch ranks chunks by full-text relevance against the query.
func (s *Store) KeywordSearch(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error) {
	where, filterArgs := buildFilterClauses(filters, 3)

	q := `
		SELECT` + hitColumns + `,
			ts_rank(to_tsvector('simple', c.chunk_text), plainto_tsquery('simple', $1)) AS rank
		FROM chunks c
		JOIN documents d ON d.doc_id = c.doc_id
		WHERE to_tsvector('simple', c.chunk_text) @@ plainto_tsquery('simple', $1)` + where + `
		ORDER BY rank DESC, c.chunk_id ASC
		LIMIT $2`

	args := append([]any{query, limit}, filterArgs...)
	return s.queryHits(ctx, "keyword search", q, args)
}

func (s *Store) queryHits(ctx context.Context, op, q string, args []any) ([]domain.SearchHit, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0)
	for rows.Next() {
		var h domain.SearchHit
		var model *string
		err := rows.Scan(
			&h.Chunk.ChunkID, &h.Chunk.DocID, &h.Chunk.PageNumber,
			&h.Chunk.SectionTitle, &h.Chunk.ChunkTopic, &h.Chunk.ContentType,
			&h.Chunk.SpecificTarget, &h.Chunk.ApplicableCohort, &h.Chunk.Value,
			&h.Chunk.Unit, &h.Chunk.Keywords, &h.Chunk.ChunkText, &model,
			&h.Chunk.CreatedAt, &h.Chunk.UpdatedAt,
			&h.Document.DocID, &h.Document.FileName, &h.Document.Title,
			&h.Document.DocType, &h.Document.IssueNumber,
			&h.Document.IssuingAuthority, &h.Document.IssuingDept,
			&h.Document.IssueDate, &h.Document.EffectiveDate,
			&h.Document.ExpirationDate, &h.Document.MajorTopic,
			&h.Document.CreatedAt, &h.Document.UpdatedAt,
			&h.Score,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: scan: %v", domain.ErrStorage, op, err)
		}
		if model != nil {
			h.Chunk.EmbeddingModel = *model
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
	}
	return hits, nil
}
