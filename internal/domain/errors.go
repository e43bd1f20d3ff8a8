package domain

import "errors"

var (
	// ErrTransport signals that the extraction or embedding backend was
	// unreachable or rejected the call. Retryable by the caller with backoff.
	ErrTransport = errors.New("backend transport error")
	// ErrValidation signals an extraction result that does not conform to
	// the schema contract. Not retryable without changing the prompt or schema.
	ErrValidation = errors.New("schema validation failed")
	// ErrStorage signals a database transaction failure. The transaction has
	// been rolled back; the caller may retry the whole document.
	ErrStorage = errors.New("storage error")
	// ErrEmbedding signals an embedding provider failure for a single chunk.
	// Non-fatal during ingestion: the chunk is dropped from the storage
	// batch, logged, and reported in the ingest result.
	ErrEmbedding = errors.New("embedding provider error")

	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch between the
	// embedder output and the configured storage dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrModelMismatch signals a query embedded with a different model than the
	// one that produced the stored vectors. Mixing embedding spaces silently
	// degrades ranking, so it is rejected instead.
	ErrModelMismatch = errors.New("embedding model mismatch")
)
