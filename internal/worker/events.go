package worker

// IngestTask asks the ingest worker to rebuild a document's chunks from
// the stored upload file.
type IngestTask struct {
	DocumentID    string `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
}

// DocumentIngested is published after a document and its chunks are
// committed, for downstream consumers.
type DocumentIngested struct {
	DocumentID    string `json:"document_id"`
	OwnerID       string `json:"owner_id"`
	Filename      string `json:"filename"`
	ChunkCount    int    `json:"chunk_count"`
	CorrelationID string `json:"correlation_id"`
}
