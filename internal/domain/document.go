package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the metadata of one ingested administrative document.
// Optional attributes are pointers: nil means the extraction found nothing,
// never an empty or "null" string.
type Document struct {
	DocID            string
	FileName         string
	Title            string
	DocType          *string
	IssueNumber      *string
	IssuingAuthority *string
	IssuingDept      *string
	IssueDate        *time.Time
	EffectiveDate    *string // ISO date or free-form effectivity ("from signing date")
	ExpirationDate   *time.Time
	MajorTopic       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the minimal identifying subset that must be present once
// extraction succeeds. DocID is immutable and must be a UUID.
func (d *Document) Validate() error {
	if d.DocID == "" {
		return fmt.Errorf("doc_id is required: %w", ErrValidation)
	}
	if _, err := uuid.Parse(d.DocID); err != nil {
		return fmt.Errorf("doc_id %q is not a valid UUID: %w", d.DocID, ErrValidation)
	}
	if d.FileName == "" {
		return fmt.Errorf("file_name is required: %w", ErrValidation)
	}
	if d.Title == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	return nil
}
