// Package postgres implements the primary storage engine: document and
// chunk persistence plus semantic and keyword retrieval on pgvector.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docdex-io/docdex/internal/domain"
)

// dbpool is the subset of pgxpool.Pool the store uses.
type dbpool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool dbpool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", domain.ErrStorage, err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrStorage, err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls the database until it accepts connections or the
// timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		if err := s.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}

// Migrate creates the schema if it does not exist. dim fixes the vector
// column width; a later change of embedding model with a different width
// requires a manual migration.
func (s *Store) Migrate(ctx context.Context, dim, hnswM, hnswEFConstruct int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id UUID PRIMARY KEY,
			file_name TEXT NOT NULL,
			title TEXT NOT NULL,
			doc_type TEXT,
			issue_number TEXT,
			issuing_authority TEXT,
			issuing_department TEXT,
			issue_date DATE,
			effective_date TEXT,
			expiration_date DATE,
			major_topic TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id UUID PRIMARY KEY,
			doc_id UUID NOT NULL REFERENCES documents(doc_id) ON DELETE CASCADE,
			page_number INTEGER,
			section_title TEXT,
			chunk_topic TEXT,
			content_type TEXT,
			specific_target TEXT,
			applicable_cohort TEXT,
			value TEXT,
			unit TEXT,
			keywords TEXT[],
			chunk_text TEXT NOT NULL,
			embedding vector(%d),
			embedding_model TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dim),
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks (doc_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_content_type ON chunks (content_type)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_text_search
			ON chunks USING GIN (to_tsvector('simple', chunk_text))`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_chunks_embedding
			ON chunks USING hnsw (embedding vector_cosine_ops)
			WITH (m = %d, ef_construction = %d)`, hnswM, hnswEFConstruct),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %v", domain.ErrStorage, err)
		}
	}
	return nil
}
