package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docdex-io/docdex/internal/domain"
)

type ingestRequest struct {
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

type searchRequest struct {
	Query   string        `json:"query"`
	Limit   int           `json:"limit"`
	Filters searchFilters `json:"filters"`
}

type searchFilters struct {
	ContentType      string `json:"content_type"`
	MajorTopic       string `json:"major_topic"`
	ApplicableCohort string `json:"applicable_cohort"`
	SpecificTarget   string `json:"specific_target"`
}

func (f searchFilters) toDomain() domain.SearchFilters {
	return domain.SearchFilters{
		ContentType:      f.ContentType,
		MajorTopic:       f.MajorTopic,
		ApplicableCohort: f.ApplicableCohort,
		SpecificTarget:   f.SpecificTarget,
	}
}

// handleIngest accepts either a multipart file upload (field "file") or a
// JSON body with pre-extracted text.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleIngestUpload(w, r)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decode request: %v", domain.ErrValidation, err))
		return
	}
	if req.FileName == "" || strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, fmt.Errorf("%w: file_name and text are required", domain.ErrValidation))
		return
	}

	report, err := s.ingestor.Ingest(r.Context(), req.FileName, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if report.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, report)
}

func (s *Server) handleIngestUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: missing file field: %v", domain.ErrValidation, err))
		return
	}
	defer file.Close()

	// docconv works on paths, so the upload is staged on disk first.
	tmp, err := os.CreateTemp("", "docdex-*"+filepath.Ext(header.Filename))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.writeError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}
	if err := tmp.Close(); err != nil {
		s.writeError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}

	// The staged path carries a random name; ingest under the upload's name
	// so the stored document keeps it.
	report, err := s.ingestor.IngestFileAs(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if report.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, report)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "doc_id")

	doc, err := s.documents.GetDocument(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chunks, err := s.documents.ListChunks(r.Context(), docID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	chunkResponses := make([]chunkResponse, 0, len(chunks))
	for _, c := range chunks {
		chunkResponses = append(chunkResponses, toChunkResponse(c))
	}
	writeJSON(w, http.StatusOK, struct {
		Document documentResponse `json:"document"`
		Chunks   []chunkResponse  `json:"chunks"`
	}{toDocumentResponse(doc), chunkResponses})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "doc_id")
	if err := s.documents.DeleteDocument(r.Context(), docID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, s.searcher.Semantic)
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, r *http.Request) {
	s.handleSearch(w, r, s.searcher.Keyword)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.SearchHit, error)) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decode request: %v", domain.ErrValidation, err))
		return
	}

	hits, err := run(r.Context(), req.Query, req.Filters.toDomain(), req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Results []searchHitResponse `json:"results"`
		Count   int                 `json:"count"`
	}{toSearchHitResponses(hits), len(hits)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.documents.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.documents.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
