package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docdex-io/docdex/internal/domain"
)

const documentColumns = `doc_id, file_name, title, doc_type, issue_number,
	issuing_authority, issuing_department, issue_date, effective_date,
	expiration_date, major_topic, created_at, updated_at`

// UpsertDocument inserts the document or, when doc_id already exists,
// refreshes its metadata. Returns true when a new row was created.
func (s *Store) UpsertDocument(ctx context.Context, doc domain.Document) (bool, error) {
	const q = `
		INSERT INTO documents (
			doc_id, file_name, title, doc_type, issue_number,
			issuing_authority, issuing_department, issue_date,
			effective_date, expiration_date, major_topic
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (doc_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			title = EXCLUDED.title,
			doc_type = EXCLUDED.doc_type,
			issue_number = EXCLUDED.issue_number,
			issuing_authority = EXCLUDED.issuing_authority,
			issuing_department = EXCLUDED.issuing_department,
			issue_date = EXCLUDED.issue_date,
			effective_date = EXCLUDED.effective_date,
			expiration_date = EXCLUDED.expiration_date,
			major_topic = EXCLUDED.major_topic,
			updated_at = now()
		RETURNING (xmax = 0) AS created`

	var created bool
	err := s.pool.QueryRow(ctx, q,
		doc.DocID, doc.FileName, doc.Title, doc.DocType, doc.IssueNumber,
		doc.IssuingAuthority, doc.IssuingDept, doc.IssueDate,
		doc.EffectiveDate, doc.ExpirationDate, doc.MajorTopic,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("%w: upsert document %s: %v", domain.ErrStorage, doc.DocID, err)
	}
	return created, nil
}

func (s *Store) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE doc_id = $1`

	var doc domain.Document
	err := s.pool.QueryRow(ctx, q, docID).Scan(
		&doc.DocID, &doc.FileName, &doc.Title, &doc.DocType, &doc.IssueNumber,
		&doc.IssuingAuthority, &doc.IssuingDept, &doc.IssueDate,
		&doc.EffectiveDate, &doc.ExpirationDate, &doc.MajorTopic,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, docID)
		}
		return domain.Document{}, fmt.Errorf("%w: get document %s: %v", domain.ErrStorage, docID, err)
	}
	return doc, nil
}

// DeleteDocument removes the document; its chunks go with it via the
// foreign key cascade.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID)
	if err != nil {
		return fmt.Errorf("%w: delete document %s: %v", domain.ErrStorage, docID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, docID)
	}
	return nil
}

// Stats reports corpus-level counts.
func (s *Store) Stats(ctx context.Context) (domain.Stats, error) {
	const q = `
		SELECT
			(SELECT count(*) FROM documents),
			(SELECT count(*) FROM chunks),
			(SELECT count(*) FROM chunks WHERE embedding IS NOT NULL)`

	var st domain.Stats
	if err := s.pool.QueryRow(ctx, q).Scan(&st.Documents, &st.Chunks, &st.EmbeddedChunks); err != nil {
		return domain.Stats{}, fmt.Errorf("%w: stats: %v", domain.ErrStorage, err)
	}
	return st, nil
}
