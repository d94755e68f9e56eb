package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forgedocs/features/document"
	"forgedocs/internal/answer"
	"forgedocs/internal/assemble"
	"forgedocs/internal/rank"
)

type MockChunkReader struct {
	mock.Mock
}

func (m *MockChunkReader) ChunksByOwner(ctx context.Context, ownerID string) ([]document.OwnedChunk, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.OwnedChunk), args.Error(1)
}

type stubGenerator struct {
	text   string
	err    error
	called bool

	gotPrompt string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.called = true
	g.gotPrompt = prompt
	return g.text, g.err
}

func newTestService(reader ChunkReader, gen answer.Generator) *Service {
	return NewService(
		reader,
		rank.NewScorer(rank.DefaultOptions()),
		assemble.New(8000),
		answer.NewSynthesizer(gen, answer.DefaultTopics()),
		100,
		3,
	)
}

func TestAsk_NoDocuments(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{}, nil)
	gen := &stubGenerator{text: "should not be used"}

	svc := newTestService(reader, gen)
	ans, err := svc.Ask(context.Background(), "owner-1", "what is in my files?")

	require.NoError(t, err)
	assert.Equal(t, NoDocumentsMessage, ans.Answer)
	assert.Empty(t, ans.SourceFiles)
	assert.False(t, ans.HadContext)
	assert.False(t, gen.called, "synthesizer must not run with zero documents")
}

func TestAsk_ScoredRetrieval(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{
		{Content: "Always wear goggles when operating the power hammer. Hammer safety depends on a clear floor.", Filename: "safety.pdf"},
		{Content: "Quarterly revenue grew by 4 percent.", Filename: "finance.xlsx"},
	}, nil)
	gen := &stubGenerator{text: "Wear goggles and keep the floor clear."}

	svc := newTestService(reader, gen)
	ans, err := svc.Ask(context.Background(), "owner-1", "hammer safety steps")

	require.NoError(t, err)
	assert.Equal(t, "Wear goggles and keep the floor clear.", ans.Answer)
	assert.Equal(t, []string{"safety.pdf"}, ans.SourceFiles)
	assert.True(t, ans.HadContext)
	assert.Contains(t, gen.gotPrompt, "=== DOCUMENT: safety.pdf ===")
	assert.NotContains(t, gen.gotPrompt, "finance.xlsx")
}

func TestAsk_ListingQuerySeesAllDocuments(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{
		{Content: "forge manual chunk", Filename: "manual.pdf"},
		{Content: "inventory chunk", Filename: "inventory.xlsx"},
		{Content: "sign text", Filename: "sign.png"},
	}, nil)
	gen := &stubGenerator{text: "You have three documents."}

	svc := newTestService(reader, gen)
	ans, err := svc.Ask(context.Background(), "owner-1", "list all my documents")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"manual.pdf", "inventory.xlsx", "sign.png"}, ans.SourceFiles)
	assert.Contains(t, gen.gotPrompt, "manual.pdf")
	assert.Contains(t, gen.gotPrompt, "inventory.xlsx")
	assert.Contains(t, gen.gotPrompt, "sign.png")
}

func TestAsk_NoMatchesFallsBackToRecentChunks(t *testing.T) {
	reader := new(MockChunkReader)
	// Repository order is newest document first.
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{
		{Content: "newest alpha", Filename: "d1.txt"},
		{Content: "newest beta", Filename: "d1.txt"},
		{Content: "second chunk", Filename: "d2.txt"},
		{Content: "third chunk", Filename: "d3.txt"},
		{Content: "oldest chunk", Filename: "d4.txt"},
	}, nil)
	gen := &stubGenerator{text: "Based on your recent uploads..."}

	svc := newTestService(reader, gen)
	ans, err := svc.Ask(context.Background(), "owner-1", "zzzzz qqqqq")

	require.NoError(t, err)

	// Three most recent chunks, not three documents: both d1 chunks plus
	// the first d2 chunk.
	assert.Equal(t, []string{"d1.txt", "d2.txt"}, ans.SourceFiles)
	assert.Contains(t, gen.gotPrompt, "newest alpha")
	assert.Contains(t, gen.gotPrompt, "newest beta")
	assert.Contains(t, gen.gotPrompt, "second chunk")
	assert.NotContains(t, gen.gotPrompt, "third chunk")
	assert.NotContains(t, gen.gotPrompt, "oldest chunk")
}

func TestAsk_SynthesizerFallbackNeverFails(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{
		{Content: "hammer maintenance instructions and torque settings", Filename: "manual.pdf"},
	}, nil)
	gen := &stubGenerator{err: errors.New("model unavailable")}

	svc := newTestService(reader, gen)
	ans, err := svc.Ask(context.Background(), "owner-1", "hammer maintenance")

	require.NoError(t, err)
	assert.NotEmpty(t, ans.Answer)
	assert.Contains(t, ans.Answer, "manual.pdf")
}

func TestAsk_RepositoryError(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return(nil, errors.New("connection refused"))

	svc := newTestService(reader, &stubGenerator{})
	_, err := svc.Ask(context.Background(), "owner-1", "anything")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load chunks")
}

func TestAsk_CanceledContext(t *testing.T) {
	reader := new(MockChunkReader)
	reader.On("ChunksByOwner", mock.Anything, "owner-1").Return([]document.OwnedChunk{
		{Content: "hammer maintenance instructions", Filename: "manual.pdf"},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancelingGen := &stubGenerator{text: "partial"}
	svc := newTestService(reader, cancelingGen)

	cancel()
	_, err := svc.Ask(ctx, "owner-1", "hammer maintenance")

	assert.ErrorIs(t, err, context.Canceled)
}
