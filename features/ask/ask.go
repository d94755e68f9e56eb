// Package ask owns the question side: load the owner's chunks, rank them
// against the question, assemble a bounded context and synthesize an
// answer.
package ask

import (
	"context"
	"fmt"

	"forgedocs/features/document"
	"forgedocs/internal/answer"
	"forgedocs/internal/assemble"
	"forgedocs/internal/rank"
)

// NoDocumentsMessage is returned verbatim when the owner has nothing
// uploaded. The synthesizer is never consulted in that case.
const NoDocumentsMessage = "You haven't uploaded any documents yet. Upload some files first, then ask me about their contents."

// ChunkReader is the slice of the document repository this feature needs.
type ChunkReader interface {
	ChunksByOwner(ctx context.Context, ownerID string) ([]document.OwnedChunk, error)
}

type Answer struct {
	Answer      string   `json:"answer"`
	SourceFiles []string `json:"source_files"`
	HadContext  bool     `json:"had_context"`
}

type Service struct {
	chunks    ChunkReader
	scorer    *rank.Scorer
	assembler *assemble.Assembler
	synth     *answer.Synthesizer
	topK      int
	recent    int
}

func NewService(chunks ChunkReader, scorer *rank.Scorer, assembler *assemble.Assembler, synth *answer.Synthesizer, topK, recent int) *Service {
	return &Service{chunks: chunks, scorer: scorer, assembler: assembler, synth: synth, topK: topK, recent: recent}
}

func (s *Service) Ask(ctx context.Context, ownerID, question string) (*Answer, error) {
	owned, err := s.chunks.ChunksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	if len(owned) == 0 {
		return &Answer{Answer: NoDocumentsMessage, SourceFiles: []string{}}, nil
	}

	candidates := make([]rank.Chunk, len(owned))
	for i, c := range owned {
		candidates[i] = rank.Chunk{Content: c.Content, Filename: c.Filename}
	}

	scored := s.scorer.Score(question, candidates)
	if len(scored) == 0 {
		// Nothing matched the question; answer from the most recently
		// ingested chunks rather than with empty context.
		scored = s.recentChunks(owned)
	}
	if len(scored) > s.topK {
		scored = scored[:s.topK]
	}

	contextText, sources := s.assembler.Assemble(scored)

	text := s.synth.Answer(ctx, answer.Request{
		Question: question,
		Context:  contextText,
		Sources:  sources,
	})

	// A canceled request must not return a half-built answer.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Answer{Answer: text, SourceFiles: sources, HadContext: true}, nil
}

// recentChunks returns up to recent chunks from the head of the owner's
// chunk set, relying on the repository's newest-first ordering.
func (s *Service) recentChunks(owned []document.OwnedChunk) []rank.Scored {
	n := s.recent
	if n > len(owned) {
		n = len(owned)
	}

	out := make([]rank.Scored, 0, n)
	for _, c := range owned[:n] {
		out = append(out, rank.Scored{Chunk: rank.Chunk{Content: c.Content, Filename: c.Filename}})
	}
	return out
}
