package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/logger"
)

type documentResponse struct {
	DocID            string  `json:"doc_id"`
	FileName         string  `json:"file_name"`
	Title            string  `json:"title"`
	DocType          *string `json:"doc_type,omitempty"`
	IssueNumber      *string `json:"issue_number,omitempty"`
	IssuingAuthority *string `json:"issuing_authority,omitempty"`
	IssuingDept      *string `json:"issuing_department,omitempty"`
	IssueDate        *string `json:"issue_date,omitempty"`
	EffectiveDate    *string `json:"effective_date,omitempty"`
	ExpirationDate   *string `json:"expiration_date,omitempty"`
	MajorTopic       *string `json:"major_topic,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type chunkResponse struct {
	ChunkID          string   `json:"chunk_id"`
	DocID            string   `json:"doc_id"`
	PageNumber       *int     `json:"page_number,omitempty"`
	SectionTitle     *string  `json:"section_title,omitempty"`
	ChunkTopic       *string  `json:"chunk_topic,omitempty"`
	ContentType      *string  `json:"content_type,omitempty"`
	SpecificTarget   *string  `json:"specific_target,omitempty"`
	ApplicableCohort *string  `json:"applicable_cohort,omitempty"`
	Value            *string  `json:"value,omitempty"`
	Unit             *string  `json:"unit,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	ChunkText        string   `json:"chunk_text"`
	EmbeddingModel   string   `json:"embedding_model,omitempty"`
}

type searchHitResponse struct {
	Score    float64          `json:"score"`
	Chunk    chunkResponse    `json:"chunk"`
	Document documentResponse `json:"document"`
}

func toDocumentResponse(d domain.Document) documentResponse {
	return documentResponse{
		DocID:            d.DocID,
		FileName:         d.FileName,
		Title:            d.Title,
		DocType:          d.DocType,
		IssueNumber:      d.IssueNumber,
		IssuingAuthority: d.IssuingAuthority,
		IssuingDept:      d.IssuingDept,
		IssueDate:        formatDate(d.IssueDate),
		EffectiveDate:    d.EffectiveDate,
		ExpirationDate:   formatDate(d.ExpirationDate),
		MajorTopic:       d.MajorTopic,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        d.UpdatedAt.Format(time.RFC3339),
	}
}

func toChunkResponse(c domain.Chunk) chunkResponse {
	return chunkResponse{
		ChunkID:          c.ChunkID,
		DocID:            c.DocID,
		PageNumber:       c.PageNumber,
		SectionTitle:     c.SectionTitle,
		ChunkTopic:       c.ChunkTopic,
		ContentType:      c.ContentType,
		SpecificTarget:   c.SpecificTarget,
		ApplicableCohort: c.ApplicableCohort,
		Value:            c.Value,
		Unit:             c.Unit,
		Keywords:         c.Keywords,
		ChunkText:        c.ChunkText,
		EmbeddingModel:   c.EmbeddingModel,
	}
}

func toSearchHitResponses(hits []domain.SearchHit) []searchHitResponse {
	out := make([]searchHitResponse, 0, len(hits))
	for _, h := range hits {
		out = append(out, searchHitResponse{
			Score:    h.Score,
			Chunk:    toChunkResponse(h.Chunk),
			Document: toDocumentResponse(h.Document),
		})
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP status codes. Server errors log
// through the request-scoped logger so the request id travels with them.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorWith(w, logger.FromContextOr(r.Context(), s.logger), err)
}

func writeErrorWith(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrTransport), errors.Is(err, domain.ErrEmbedding):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
