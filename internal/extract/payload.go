// Package extract defines the schema contract for generative document
// extraction: the serialized exchange format, the JSON Schema handed to the
// extraction backend, the extraction instructions, and the normalization of
// raw extraction payloads into validated domain entities.
package extract

import "encoding/json"

// Payload is the serialized exchange format between the extractor client and
// the storage engine: one document's metadata plus its extracted chunks.
type Payload struct {
	DocumentMetadata DocumentMeta `json:"document_metadata"`
	ChunkMetadata    []ChunkMeta  `json:"chunk_metadata"`
}

// DocumentMeta mirrors the documents table columns the extraction backend
// fills in. All fields except doc identity are optional; the backend returns
// JSON null for anything it cannot find.
type DocumentMeta struct {
	DocID            *string `json:"doc_id"`
	FileName         *string `json:"file_name"`
	Title            *string `json:"title"`
	DocType          *string `json:"doc_type"`
	IssueNumber      *string `json:"issue_number"`
	IssuingAuthority *string `json:"issuing_authority"`
	IssuingDept      *string `json:"issuing_dept"`
	IssueDate        *string `json:"issue_date"`
	EffectiveDate    *string `json:"effective_date"`
	ExpirationDate   *string `json:"expiration_date"`
	MajorTopic       *string `json:"major_topic"`
}

// ChunkMeta mirrors the chunks table columns the extraction backend fills in.
// Value is numeric-or-label, so it arrives as an arbitrary JSON scalar.
type ChunkMeta struct {
	ChunkID          *string    `json:"chunk_id"`
	PageNumber       *int       `json:"page_number"`
	SectionTitle     *string    `json:"section_title"`
	ChunkTopic       *string    `json:"chunk_topic"`
	ContentType      *string    `json:"content_type"`
	SpecificTarget   *string    `json:"specific_target"`
	ApplicableCohort *string    `json:"applicable_cohort"`
	Value            *RawScalar `json:"value"`
	Unit             *string    `json:"unit"`
	Keywords         []string   `json:"keywords"`
	ChunkText        string     `json:"chunk_text"`
}

// RawScalar accepts a JSON number or string and preserves its textual form.
// The extraction schema allows value to be a pure number (450000) or a label
// ("free of charge"); both are carried as text.
type RawScalar struct {
	Text      string
	IsNumeric bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawScalar) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		r.Text = n.String()
		r.IsNumeric = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	r.Text = s
	r.IsNumeric = false
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r RawScalar) MarshalJSON() ([]byte, error) {
	if r.IsNumeric {
		return []byte(r.Text), nil
	}
	return json.Marshal(r.Text)
}
