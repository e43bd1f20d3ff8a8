package postgres

import (
	"context"
	"fmt"

	"github.com/docdex-io/docdex/internal/domain"
)

// UpsertChunks writes the batch inside a single transaction so a document's
// chunk set is never half-replaced. A chunk without an embedding gets a NULL
// vector; the ingest pipeline filters those out before calling here.
func (s *Store) UpsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO chunks (
			chunk_id, doc_id, page_number, section_title, chunk_topic,
			content_type, specific_target, applicable_cohort, value, unit,
			keywords, chunk_text, embedding, embedding_model
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (chunk_id) DO UPDATE SET
			page_number = EXCLUDED.page_number,
			section_title = EXCLUDED.section_title,
			chunk_topic = EXCLUDED.chunk_topic,
			content_type = EXCLUDED.content_type,
			specific_target = EXCLUDED.specific_target,
			applicable_cohort = EXCLUDED.applicable_cohort,
			value = EXCLUDED.value,
			unit = EXCLUDED.unit,
			keywords = EXCLUDED.keywords,
			chunk_text = EXCLUDED.chunk_text,
			embedding = EXCLUDED.embedding,
			embedding_model = EXCLUDED.embedding_model,
			updated_at = now()`

	for _, c := range chunks {
		var embedding any
		var model any
		if len(c.Embedding) > 0 {
			embedding = encodeVector(c.Embedding)
			model = c.EmbeddingModel
		}
		_, err := tx.Exec(ctx, q,
			c.ChunkID, c.DocID, c.PageNumber, c.SectionTitle, c.ChunkTopic,
			c.ContentType, c.SpecificTarget, c.ApplicableCohort, c.Value, c.Unit,
			c.Keywords, c.ChunkText, embedding, model,
		)
		if err != nil {
			return fmt.Errorf("%w: upsert chunk %s: %v", domain.ErrStorage, c.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return nil
}

// ListChunks returns a document's chunks ordered by page then chunk id.
func (s *Store) ListChunks(ctx context.Context, docID string) ([]domain.Chunk, error) {
	const q = `
		SELECT chunk_id, doc_id, page_number, section_title, chunk_topic,
			content_type, specific_target, applicable_cohort, value, unit,
			keywords, chunk_text, embedding_model, created_at, updated_at
		FROM chunks
		WHERE doc_id = $1
		ORDER BY page_number NULLS LAST, chunk_id ASC`

	rows, err := s.pool.Query(ctx, q, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: list chunks %s: %v", domain.ErrStorage, docID, err)
	}
	defer rows.Close()

	chunks := make([]domain.Chunk, 0)
	for rows.Next() {
		var c domain.Chunk
		var model *string
		err := rows.Scan(
			&c.ChunkID, &c.DocID, &c.PageNumber, &c.SectionTitle, &c.ChunkTopic,
			&c.ContentType, &c.SpecificTarget, &c.ApplicableCohort, &c.Value, &c.Unit,
			&c.Keywords, &c.ChunkText, &model, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scan chunk: %v", domain.ErrStorage, err)
		}
		if model != nil {
			c.EmbeddingModel = *model
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list chunks %s: %v", domain.ErrStorage, docID, err)
	}
	return chunks, nil
}
