// Package text splits extracted document text into overlapping chunks for
// storage and retrieval.
package text

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sectionSplit  = regexp.MustCompile(`\n\s*\n`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// Chunker produces chunks of at most roughly size characters. Text that
// fits in one chunk is emitted whole; larger text is split into sections on
// blank lines, one chunk per section. A section larger than size is further
// split on sentence boundaries with overlap characters carried between
// consecutive parts, so a sentence cut at a chunk edge is still findable in
// the next chunk.
//
// Every chunk starts with a provenance header naming the source file and
// type. Chunks shorter than min are dropped.
type Chunker struct {
	size    int
	overlap int
	min     int
}

func NewChunker(size, overlap, min int) *Chunker {
	return &Chunker{size: size, overlap: overlap, min: min}
}

func (c *Chunker) Chunk(text, filename, fileType string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	base := fmt.Sprintf("FILE: %s\nTYPE: %s\n", filename, fileType)

	if len(text) <= c.size {
		return c.keep([]string{base + "CONTENT:\n" + text})
	}

	var chunks []string
	for _, section := range sectionSplit.Split(text, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		if len(section) > c.size {
			for i, part := range c.splitSentences(section) {
				chunks = append(chunks, fmt.Sprintf("%sSECTION_PART: %d\n%s", base, i+1, part))
			}
			continue
		}

		chunks = append(chunks, base+"SECTION:\n"+section)
	}

	return c.keep(chunks)
}

func (c *Chunker) keep(chunks []string) []string {
	kept := chunks[:0]
	for _, ch := range chunks {
		if len(ch) >= c.min {
			kept = append(kept, ch)
		}
	}
	return kept
}

// splitSentences breaks an oversized section on sentence punctuation and
// re-packs the pieces up to the chunk size, prepending the last overlap
// characters of the previous part to each new one.
func (c *Chunker) splitSentences(section string) []string {
	var parts []string
	var cur string

	for _, sentence := range sentenceSplit.Split(section, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if cur != "" && len(cur)+len(sentence) > c.size {
			parts = append(parts, strings.TrimSpace(cur))
			tail := cur
			if len(tail) > c.overlap {
				tail = tail[len(tail)-c.overlap:]
			}
			cur = tail + " " + sentence + ". "
			continue
		}
		cur += sentence + ". "
	}
	if strings.TrimSpace(cur) != "" {
		parts = append(parts, strings.TrimSpace(cur))
	}

	return c.keep(parts)
}
