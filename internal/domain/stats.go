package domain

// Stats summarizes the stored corpus.
type Stats struct {
	Documents      int64 `json:"documents"`
	Chunks         int64 `json:"chunks"`
	EmbeddedChunks int64 `json:"embedded_chunks"`
}
