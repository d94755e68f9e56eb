package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyText(t *testing.T) {
	c := NewChunker(1000, 200, 50)

	assert.Empty(t, c.Chunk("", "a.txt", "txt"))
	assert.Empty(t, c.Chunk("   \n\n  ", "a.txt", "txt"))
}

func TestChunk_SingleSectionGetsContentHeader(t *testing.T) {
	c := NewChunker(1000, 200, 50)

	chunks := c.Chunk("The forge runs at 1200 degrees during normal operation.", "manual.pdf", "pdf")

	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0], "FILE: manual.pdf\nTYPE: pdf\nCONTENT:\n"))
	assert.Contains(t, chunks[0], "1200 degrees")
}

func TestChunk_EachSectionBecomesOwnChunk(t *testing.T) {
	c := NewChunker(200, 50, 20)

	s1 := strings.TrimSpace(strings.Repeat("alpha ", 20))
	s2 := strings.TrimSpace(strings.Repeat("bravo ", 20))
	text := s1 + "\n\n" + s2

	chunks := c.Chunk(text, "doc.txt", "txt")

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "FILE: doc.txt\nTYPE: txt\nSECTION:\n"))
	assert.Contains(t, chunks[0], "alpha")
	assert.NotContains(t, chunks[0], "bravo")
	assert.True(t, strings.HasPrefix(chunks[1], "FILE: doc.txt\nTYPE: txt\nSECTION:\n"))
	assert.Contains(t, chunks[1], "bravo")
	assert.NotContains(t, chunks[1], "alpha")
}

func TestChunk_FourSmallSectionsYieldFourChunks(t *testing.T) {
	c := NewChunker(1000, 200, 50)

	sections := []string{
		strings.TrimSpace(strings.Repeat("first section prose. ", 20)),
		strings.TrimSpace(strings.Repeat("second section prose. ", 20)),
		strings.TrimSpace(strings.Repeat("third section prose. ", 20)),
		strings.TrimSpace(strings.Repeat("fourth section prose. ", 20)),
	}
	text := strings.Join(sections, "\n\n")

	chunks := c.Chunk(text, "doc.txt", "txt")

	require.Len(t, chunks, 4, "each under-limit section is its own chunk")
	for i, ch := range chunks {
		assert.Truef(t, strings.HasPrefix(ch, "FILE: doc.txt\nTYPE: txt\nSECTION:\n"), "chunk %d header", i)
		assert.Contains(t, ch, sections[i][:20])
	}
}

func TestChunk_OversizedSectionSplitsWithOverlap(t *testing.T) {
	c := NewChunker(1000, 200, 50)

	var b strings.Builder
	for b.Len() < 1500 {
		b.WriteString("The hammer strikes the glowing billet while the smith turns it on the anvil. ")
	}
	text := strings.TrimSpace(b.String())

	chunks := c.Chunk(text, "process.txt", "txt")

	require.Len(t, chunks, 2)
	for i, ch := range chunks {
		assert.Truef(t, strings.HasPrefix(ch, "FILE: process.txt\nTYPE: txt\nSECTION_PART:"), "chunk %d header", i)
	}
	assert.Contains(t, chunks[0], "SECTION_PART: 1\n")
	assert.Contains(t, chunks[1], "SECTION_PART: 2\n")

	// The tail of part 1 reappears at the head of part 2.
	body1 := chunks[0][strings.Index(chunks[0], "SECTION_PART: 1\n")+len("SECTION_PART: 1\n"):]
	tail := body1[len(body1)-100:]
	assert.Contains(t, chunks[1], tail)
}

func TestChunk_DropsTinyChunks(t *testing.T) {
	c := NewChunker(1000, 200, 80)

	chunks := c.Chunk("ok.", "t.txt", "txt")

	assert.Empty(t, chunks, "chunk below the minimum size should be dropped")
}

func TestChunk_MinimumSizeBoundaryIsInclusive(t *testing.T) {
	// "FILE: t.txt\nTYPE: txt\nCONTENT:\nok." is exactly 34 characters.
	c := NewChunker(1000, 200, 34)

	chunks := c.Chunk("ok.", "t.txt", "txt")

	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 34)

	// The sentence-split path applies the same inclusive boundary.
	sp := NewChunker(1000, 200, 12)
	parts := sp.splitSentences("hello world")
	require.Len(t, parts, 1)
	assert.Equal(t, "hello world.", parts[0])
}
