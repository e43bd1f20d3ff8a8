package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/docdex-io/docdex/internal/domain"
)

func TestBuildFilterClauses(t *testing.T) {
	t.Run("empty filters produce no clause", func(t *testing.T) {
		where, args := buildFilterClauses(domain.SearchFilters{}, 3)
		if where != "" || args != nil {
			t.Fatalf("got (%q, %v), want empty", where, args)
		}
	})

	t.Run("equality filters", func(t *testing.T) {
		where, args := buildFilterClauses(domain.SearchFilters{
			ContentType: "payment",
			MajorTopic:  "housing",
		}, 3)
		want := " AND c.content_type = $3 AND d.major_topic = $4"
		if where != want {
			t.Fatalf("got %q, want %q", where, want)
		}
		if len(args) != 2 || args[0] != "payment" || args[1] != "housing" {
			t.Fatalf("got args %v", args)
		}
	})

	t.Run("substring filters wrap with wildcards", func(t *testing.T) {
		where, args := buildFilterClauses(domain.SearchFilters{
			ApplicableCohort: "2023",
			SpecificTarget:   "large families",
		}, 4)
		want := " AND c.applicable_cohort ILIKE $4 AND c.specific_target ILIKE $5"
		if where != want {
			t.Fatalf("got %q, want %q", where, want)
		}
		if args[0] != "%2023%" || args[1] != "%large families%" {
			t.Fatalf("got args %v", args)
		}
	})

	t.Run("placeholders continue from offset", func(t *testing.T) {
		where, _ := buildFilterClauses(domain.SearchFilters{
			ContentType:      "deadline",
			ApplicableCohort: "2024",
		}, 7)
		want := " AND c.content_type = $7 AND c.applicable_cohort ILIKE $8"
		if where != want {
			t.Fatalf("got %q, want %q", where, want)
		}
	})
}

// hitRow builds one result row in the column order queryHits scans.
func hitRow(chunkID, docID string, score float64) []any {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []any{
		chunkID, docID, nil, nil, nil,
		"payment", nil, nil, nil, nil,
		[]string{"subsidy", "housing", "deadline"},
		"Applications must be filed before 30 June.",
		"test-embedding-model", now, now,
		docID, "decree_2024.pdf", "Decree on housing subsidies",
		nil, nil, nil, nil, nil, nil, nil,
		"housing", now, now,
		score,
	}
}

func TestSemanticSearchQueryContract(t *testing.T) {
	pool := &fakePool{
		queryFunc: func(string, []any) (pgx.Rows, error) {
			return &fakeRows{rows: [][]any{
				hitRow("0b4f0a51-0f5a-4f34-9a6a-111111111111", "6f1e8e46-45b1-4c9a-9e57-3f2d1c0a8b77", 0.91),
			}}, nil
		},
	}
	store := &Store{pool: pool}

	hits, err := store.SemanticSearch(context.Background(), []float32{0.5, -1.25},
		"test-embedding-model", domain.SearchFilters{ContentType: "payment"}, 5)
	if err != nil {
		t.Fatalf("semantic search: %v", err)
	}

	q := pool.gotSQL[0]
	// Distance ordering with chunk_id as the deterministic tie-break.
	if !strings.Contains(q, "ORDER BY c.embedding <=> $1::vector ASC, c.chunk_id ASC") {
		t.Fatalf("unexpected ordering:\n%s", q)
	}
	if !strings.Contains(q, "c.embedding IS NOT NULL AND c.embedding_model = $2") {
		t.Fatalf("missing model guard:\n%s", q)
	}
	if !strings.Contains(q, "c.content_type = $4") {
		t.Fatalf("missing filter clause:\n%s", q)
	}

	args := pool.gotArgs[0]
	if len(args) != 4 {
		t.Fatalf("got %d args, want 4", len(args))
	}
	if args[0] != "[0.5,-1.25]" || args[1] != "test-embedding-model" || args[2] != 5 || args[3] != "payment" {
		t.Fatalf("got args %v", args)
	}

	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	h := hits[0]
	if h.Score != 0.91 {
		t.Fatalf("got score %v, want 0.91", h.Score)
	}
	if h.Chunk.ContentType == nil || *h.Chunk.ContentType != "payment" {
		t.Fatalf("got content type %v", h.Chunk.ContentType)
	}
	if h.Chunk.EmbeddingModel != "test-embedding-model" {
		t.Fatalf("got embedding model %q", h.Chunk.EmbeddingModel)
	}
	if h.Document.FileName != "decree_2024.pdf" {
		t.Fatalf("got file name %q", h.Document.FileName)
	}
}

func TestSemanticSearchNoResults(t *testing.T) {
	pool := &fakePool{}
	store := &Store{pool: pool}

	hits, err := store.SemanticSearch(context.Background(), []float32{1},
		"test-embedding-model", domain.SearchFilters{}, 5)
	if err != nil {
		t.Fatalf("semantic search: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Fatalf("got %v, want empty non-nil slice", hits)
	}
}

func TestKeywordSearchQueryContract(t *testing.T) {
	pool := &fakePool{
		queryFunc: func(string, []any) (pgx.Rows, error) {
			return &fakeRows{rows: [][]any{
				hitRow("0b4f0a51-0f5a-4f34-9a6a-222222222222", "6f1e8e46-45b1-4c9a-9e57-3f2d1c0a8b77", 0.12),
			}}, nil
		},
	}
	store := &Store{pool: pool}

	hits, err := store.KeywordSearch(context.Background(), "subsidy deadline",
		domain.SearchFilters{MajorTopic: "housing"}, 10)
	if err != nil {
		t.Fatalf("keyword search: %v", err)
	}

	q := pool.gotSQL[0]
	if !strings.Contains(q, "plainto_tsquery('simple', $1)") {
		t.Fatalf("missing tsquery:\n%s", q)
	}
	if !strings.Contains(q, "ORDER BY rank DESC, c.chunk_id ASC") {
		t.Fatalf("unexpected ordering:\n%s", q)
	}
	if !strings.Contains(q, "d.major_topic = $3") {
		t.Fatalf("missing filter clause:\n%s", q)
	}

	args := pool.gotArgs[0]
	if len(args) != 3 || args[0] != "subsidy deadline" || args[1] != 10 || args[2] != "housing" {
		t.Fatalf("got args %v", args)
	}
	if len(hits) != 1 || hits[0].Score != 0.12 {
		t.Fatalf("got hits %v", hits)
	}
}
