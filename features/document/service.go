package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"forgedocs/internal/config"
	"forgedocs/internal/extract"
	"forgedocs/internal/middleware"
	"forgedocs/internal/text"
	"forgedocs/internal/worker"
)

// Publisher matches the nsq.Producer publish signature.
type Publisher interface {
	Publish(topic string, body []byte) error
}

type Service struct {
	repo       Repository
	extractors *extract.Registry
	chunker    *text.Chunker
	producer   Publisher
}

func NewService(repo Repository, extractors *extract.Registry, chunker *text.Chunker, producer Publisher) *Service {
	return &Service{repo: repo, extractors: extractors, chunker: chunker, producer: producer}
}

type IngestInput struct {
	OwnerID     string
	Filename    string
	StoragePath string
	Data        []byte
}

// IngestResult reports the outcome for one file. Error is set when the
// file was rejected or could not be stored; Degraded marks files stored
// with marker text instead of real content.
type IngestResult struct {
	Filename   string    `json:"filename"`
	Document   *Document `json:"document,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	Degraded   bool      `json:"degraded"`
	Error      string    `json:"error,omitempty"`
}

// Ingest extracts, chunks and stores one uploaded file. Extraction trouble
// degrades to marker text; only unsupported types and storage failures
// surface as errors.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*IngestResult, error) {
	ext := fileExt(in.Filename)
	if !s.extractors.Supported(ext) {
		return nil, fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
	}

	res, _ := s.extractors.Extract(ctx, in.Data, in.Filename, ext)
	if res.Failed {
		slog.WarnContext(ctx, "extraction failed, storing marker text",
			"filename", in.Filename, "reason", res.Reason)
	}

	content := extract.Normalize(res.MarkerText(in.Filename))
	parts := s.chunker.Chunk(content, in.Filename, ext)

	doc := &Document{
		ID:          uuid.New().String(),
		OwnerID:     in.OwnerID,
		Filename:    in.Filename,
		FileType:    ext,
		SizeBytes:   int64(len(in.Data)),
		StoragePath: in.StoragePath,
	}

	if err := s.repo.SaveWithChunks(ctx, doc, buildChunks(doc.ID, parts)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	doc.ChunkCount = len(parts)

	if len(parts) == 0 {
		slog.WarnContext(ctx, "document stored with no chunks", "filename", in.Filename, "id", doc.ID)
	}

	s.publishIngested(ctx, doc)

	return &IngestResult{
		Filename:   in.Filename,
		Document:   doc,
		ChunkCount: len(parts),
		Degraded:   res.Degraded,
	}, nil
}

// IngestBatch processes each file independently: one bad file never blocks
// the rest of the upload.
func (s *Service) IngestBatch(ctx context.Context, inputs []IngestInput) []IngestResult {
	results := make([]IngestResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := s.Ingest(ctx, in)
		if err != nil {
			slog.ErrorContext(ctx, "file ingestion failed", "filename", in.Filename, "error", err)
			results = append(results, IngestResult{Filename: in.Filename, Error: err.Error()})
			continue
		}
		results = append(results, *res)
	}
	return results
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes the document row and best-effort removes the stored
// upload file.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if doc.StoragePath != "" {
		if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "failed to remove stored file", "path", doc.StoragePath, "error", err)
		}
	}
	return nil
}

// RequestResync verifies the document exists and queues a re-ingestion
// task. The heavy work happens in the ingest worker.
func (s *Service) RequestResync(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	task := worker.IngestTask{
		DocumentID:    id,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest task: %w", err)
	}
	if err := s.producer.Publish(config.TopicIngestTask, body); err != nil {
		return fmt.Errorf("failed to publish ingest task: %w", err)
	}
	return nil
}

// ReingestFromFile rebuilds a document's chunks from its stored upload
// file. Called by the ingest worker.
func (s *Service) ReingestFromFile(ctx context.Context, documentID string) error {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", documentID, err)
	}

	data, err := os.ReadFile(doc.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to read stored file %s: %w", doc.StoragePath, err)
	}

	res, ok := s.extractors.Extract(ctx, data, doc.Filename, doc.FileType)
	if !ok {
		return fmt.Errorf("%w: .%s", ErrUnsupportedType, doc.FileType)
	}

	content := extract.Normalize(res.MarkerText(doc.Filename))
	parts := s.chunker.Chunk(content, doc.Filename, doc.FileType)

	if err := s.repo.ReplaceChunks(ctx, doc.ID, buildChunks(doc.ID, parts)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	slog.InfoContext(ctx, "document re-ingested", "id", doc.ID, "chunks", len(parts))
	s.publishIngested(ctx, doc)
	return nil
}

// publishIngested is best-effort: a broker outage must not fail an upload
// that is already committed.
func (s *Service) publishIngested(ctx context.Context, doc *Document) {
	if s.producer == nil {
		return
	}

	event := worker.DocumentIngested{
		DocumentID:    doc.ID,
		OwnerID:       doc.OwnerID,
		Filename:      doc.Filename,
		ChunkCount:    doc.ChunkCount,
		CorrelationID: middleware.GetCorrelationID(ctx),
	}
	body, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal ingested event", "error", err)
		return
	}
	if err := s.producer.Publish(config.TopicDocumentIngested, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish ingested event", "error", err, "id", doc.ID)
	}
}

func buildChunks(documentID string, parts []string) []Chunk {
	chunks := make([]Chunk, len(parts))
	for i, p := range parts {
		chunks[i] = Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Ordinal:    i,
			Content:    p,
			SizeChars:  len(p),
		}
	}
	return chunks
}

func fileExt(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
