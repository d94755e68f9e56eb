package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"forgedocs/internal/middleware"
)

type Handler struct {
	service     *Service
	uploadDir   string
	maxUploadMB int64
}

func NewHandler(service *Service, uploadDir string, maxUploadMB int64) *Handler {
	return &Handler{service: service, uploadDir: uploadDir, maxUploadMB: maxUploadMB}
}

// Upload accepts one or more files in the "files" multipart field. Files
// are processed independently; the response carries a per-file result.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get("X-Owner-ID")
	if ownerID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "X-Owner-ID header is required", http.StatusBadRequest)
		return
	}

	limit := h.maxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		h.writeError(r.Context(), w, "BAD_REQUEST", "Upload too large", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "No files provided", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o750); err != nil {
		slog.Error("failed to create upload directory", "error", err, "path", h.uploadDir)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "Failed to prepare storage", http.StatusInternalServerError)
		return
	}

	var inputs []IngestInput
	var results []IngestResult
	for _, fh := range files {
		in, err := h.readUpload(fh)
		if err != nil {
			results = append(results, IngestResult{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		in.OwnerID = ownerID
		inputs = append(inputs, *in)
	}

	results = append(results, h.service.IngestBatch(r.Context(), inputs)...)

	stored := 0
	for _, res := range results {
		if res.Error == "" {
			stored++
		}
	}

	status := http.StatusCreated
	if stored == 0 {
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]interface{}{
		"data": results,
		"meta": map[string]int{"count": len(results), "stored": stored},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// readUpload copies the part into memory for extraction and persists it
// under a UUID-prefixed name so re-sync can re-read the original bytes.
func (h *Handler) readUpload(fh *multipart.FileHeader) (*IngestInput, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}

	name := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(fh.Filename))
	path := filepath.Clean(filepath.Join(h.uploadDir, name))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return nil, fmt.Errorf("unable to persist file: %w", err)
	}

	return &IngestInput{
		Filename:    filepath.Base(fh.Filename),
		StoragePath: path,
		Data:        data,
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get("X-Owner-ID")
	if ownerID == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "X-Owner-ID header is required", http.StatusBadRequest)
		return
	}

	docs, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{
		"data": docs,
		"meta": map[string]int{"count": len(docs)},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(r.Context(), w, "NOT_FOUND", "Document not found", http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ReSync(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.RequestResync(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(r.Context(), w, "NOT_FOUND", "Document not found", http.StatusNotFound)
			return
		}
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
