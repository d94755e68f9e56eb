// Package worker runs background ingestion jobs consumed from NSQ.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nsqio/go-nsq"

	"forgedocs/internal/middleware"
)

// Reingester rebuilds a document's chunks from its stored upload file.
// Implemented by the document service.
type Reingester interface {
	ReingestFromFile(ctx context.Context, documentID string) error
}

type IngestConsumer struct {
	reingester Reingester
	timeout    time.Duration
}

func NewIngestConsumer(r Reingester, timeout time.Duration) *IngestConsumer {
	return &IngestConsumer{reingester: r, timeout: timeout}
}

func (h *IngestConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task IngestTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}
	if task.DocumentID == "" {
		slog.Error("poison pill: task without document id")
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	taskCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.reingester.ReingestFromFile(taskCtx, task.DocumentID); err != nil {
		slog.ErrorContext(ctx, "re-ingestion failed", "error", err, "document_id", task.DocumentID)
		return err // Retry
	}

	slog.InfoContext(ctx, "re-ingestion completed", "document_id", task.DocumentID)
	return nil
}
