// Package document owns the ingestion side: uploads come in, text comes
// out of the extractors, chunks land in Postgres.
package document

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnsupportedType rejects files whose extension has no extractor.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrStorage wraps database failures during ingestion so handlers can
	// map them without knowing driver error types.
	ErrStorage = errors.New("storage failure")
)

type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Filename    string    `json:"filename"`
	FileType    string    `json:"file_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoragePath string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ChunkCount  int       `json:"chunk_count"`
}

type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Ordinal    int    `json:"ordinal"`
	Content    string `json:"content"`
	SizeChars  int    `json:"size_chars"`
}

// OwnedChunk is the retrieval view: chunk content joined with its source
// filename, ordered by document recency then ordinal.
type OwnedChunk struct {
	Content  string
	Filename string
}

type Repository interface {
	SaveWithChunks(ctx context.Context, doc *Document, chunks []Chunk) error
	ReplaceChunks(ctx context.Context, documentID string, chunks []Chunk) error
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	Get(ctx context.Context, id string) (*Document, error)
	Delete(ctx context.Context, id string) error
	ChunksByOwner(ctx context.Context, ownerID string) ([]OwnedChunk, error)
}
