// Package export renders ingested documents as flat files for offline
// inspection and downstream tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/docdex-io/docdex/internal/domain"
	"github.com/docdex-io/docdex/internal/extract"
)

// WriteJSON writes the document and its chunks in the extraction exchange
// format, so an export can be re-ingested without another extraction pass.
func WriteJSON(w io.Writer, doc domain.Document, chunks []domain.Chunk) error {
	payload := extract.Payload{
		DocumentMetadata: extract.DocumentMeta{
			DocID:            &doc.DocID,
			FileName:         &doc.FileName,
			Title:            &doc.Title,
			DocType:          doc.DocType,
			IssueNumber:      doc.IssueNumber,
			IssuingAuthority: doc.IssuingAuthority,
			IssuingDept:      doc.IssuingDept,
			IssueDate:        formatDate(doc.IssueDate),
			EffectiveDate:    doc.EffectiveDate,
			ExpirationDate:   formatDate(doc.ExpirationDate),
			MajorTopic:       doc.MajorTopic,
		},
		ChunkMetadata: make([]extract.ChunkMeta, 0, len(chunks)),
	}

	for i := range chunks {
		c := &chunks[i]
		meta := extract.ChunkMeta{
			ChunkID:          &c.ChunkID,
			PageNumber:       c.PageNumber,
			SectionTitle:     c.SectionTitle,
			ChunkTopic:       c.ChunkTopic,
			ContentType:      c.ContentType,
			SpecificTarget:   c.SpecificTarget,
			ApplicableCohort: c.ApplicableCohort,
			Unit:             c.Unit,
			Keywords:         c.Keywords,
			ChunkText:        c.ChunkText,
		}
		if c.Value != nil {
			_, numeric := c.NumericValue()
			meta.Value = &extract.RawScalar{Text: *c.Value, IsNumeric: numeric}
		}
		payload.ChunkMetadata = append(payload.ChunkMetadata, meta)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"chunk_id", "doc_id", "file_name", "page_number", "section_title",
	"chunk_topic", "content_type", "specific_target", "applicable_cohort",
	"value", "unit", "keywords", "chunk_text",
}

// WriteCSV writes one row per chunk with the parent file name denormalized
// into each row.
func WriteCSV(w io.Writer, doc domain.Document, chunks []domain.Chunk) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range chunks {
		c := &chunks[i]
		row := []string{
			c.ChunkID,
			c.DocID,
			doc.FileName,
			formatPage(c.PageNumber),
			deref(c.SectionTitle),
			deref(c.ChunkTopic),
			deref(c.ContentType),
			deref(c.SpecificTarget),
			deref(c.ApplicableCohort),
			deref(c.Value),
			deref(c.Unit),
			strings.Join(c.Keywords, ";"),
			c.ChunkText,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatPage(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
