package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_ListingQueryReturnsOneChunkPerDocument(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "forge maintenance schedule", Filename: "a.pdf"},
		{Content: "second chunk of the manual", Filename: "a.pdf"},
		{Content: "quarterly revenue figures", Filename: "b.xlsx"},
		{Content: "OCR processing failed", Filename: "c.png"},
	}

	got := s.Score("what documents have I uploaded?", chunks)

	require.Len(t, got, 3, "listing intent returns one chunk per distinct file")
	assert.Equal(t, "a.pdf", got[0].Filename)
	assert.Equal(t, "forge maintenance schedule", got[0].Content, "first chunk of each file wins")
	assert.Equal(t, "b.xlsx", got[1].Filename)
	assert.Equal(t, "c.png", got[2].Filename)
	for _, sc := range got {
		assert.Zero(t, sc.Score)
	}
}

func TestScore_ExactTokenMatches(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "Always wear goggles when operating the power hammer. Hammer safety depends on a clear floor.", Filename: "safety.pdf"},
		{Content: "The company was founded in 1952.", Filename: "about.txt"},
	}

	got := s.Score("hammer safety steps", chunks)

	require.NotEmpty(t, got)
	assert.Equal(t, "safety.pdf", got[0].Filename)
	assert.GreaterOrEqual(t, got[0].Score, 20, "two exact token hits alone are worth 20")
}

func TestScore_DropsZeroScoreChunks(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "heating schedule for the furnace", Filename: "heat.pdf"},
		{Content: "completely unrelated text", Filename: "other.txt"},
	}

	got := s.Score("furnace heating", chunks)

	require.Len(t, got, 1)
	assert.Equal(t, "heat.pdf", got[0].Filename)
}

func TestScore_ShortTokensIgnored(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "it is on at to", Filename: "stop.txt"},
	}

	assert.Empty(t, s.Score("it is on", chunks), "tokens of length <= 2 never score")
}

func TestScore_StableOrderOnTies(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "furnace alpha", Filename: "first.txt"},
		{Content: "furnace bravo", Filename: "second.txt"},
	}

	got := s.Score("furnace", chunks)

	require.Len(t, got, 2)
	assert.Equal(t, "first.txt", got[0].Filename)
	assert.Equal(t, "second.txt", got[1].Filename)
}

func TestScore_LooseMatchRewardsPartialOverlap(t *testing.T) {
	s := NewScorer(DefaultOptions())
	chunks := []Chunk{
		{Content: "overheating damages the coil", Filename: "a.txt"},
	}

	got := s.Score("heating", chunks)

	require.Len(t, got, 1)
	// "heating" is a substring of "overheating": exact plus loose.
	assert.GreaterOrEqual(t, got[0].Score, 15)
}
