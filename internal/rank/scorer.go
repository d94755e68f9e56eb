// Package rank scores stored chunks against a user query with keyword
// matching. Scoring is deliberately simple string work so retrieval has no
// external dependency and stays fast at this corpus size.
package rank

import (
	"sort"
	"strings"
)

// Chunk is a stored chunk with its source file, the unit of retrieval.
type Chunk struct {
	Content  string
	Filename string
}

// Scored pairs a chunk with its relevance score for one query.
type Scored struct {
	Chunk
	Score int
}

type Options struct {
	// ListingKeywords trigger the listing shortcut: a query containing any
	// of them skips scoring and returns one chunk per distinct source file,
	// so "what documents do I have" style questions stay cheap and complete
	// at any corpus size.
	ListingKeywords []string

	ExactWeight int // per query token found verbatim in the content
	LooseWeight int // per partial token/word overlap

	MinTokenLen int // tokens at or below this length are ignored
	MinLooseLen int // minimum token length for loose matching
}

func DefaultOptions() Options {
	return Options{
		ListingKeywords: []string{"list", "all documents", "uploaded", "files", "documents"},
		ExactWeight:     10,
		LooseWeight:     5,
		MinTokenLen:     2,
		MinLooseLen:     4,
	}
}

type Scorer struct {
	opts Options
}

func NewScorer(opts Options) *Scorer {
	return &Scorer{opts: opts}
}

// Score ranks chunks against the query, highest first. Zero-score chunks
// are dropped. Ties keep their input order, so fresher chunks stay ahead
// when the caller passes them in recency order.
func (s *Scorer) Score(query string, chunks []Chunk) []Scored {
	q := strings.ToLower(query)

	if s.isListing(q) {
		var out []Scored
		seen := make(map[string]bool)
		for _, c := range chunks {
			if seen[c.Filename] {
				continue
			}
			seen[c.Filename] = true
			out = append(out, Scored{Chunk: c})
		}
		return out
	}

	tokens := strings.Fields(q)

	var out []Scored
	for _, c := range chunks {
		score := s.score(tokens, strings.ToLower(c.Content))
		if score > 0 {
			out = append(out, Scored{Chunk: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func (s *Scorer) score(tokens []string, content string) int {
	score := 0
	for _, tok := range tokens {
		if len(tok) > s.opts.MinTokenLen && strings.Contains(content, tok) {
			score += s.opts.ExactWeight
		}
	}

	words := strings.Fields(content)
	for _, tok := range tokens {
		if len(tok) <= s.opts.MinLooseLen {
			continue
		}
		for _, w := range words {
			if strings.Contains(w, tok) || strings.Contains(tok, w) {
				score += s.opts.LooseWeight
			}
		}
	}
	return score
}

func (s *Scorer) isListing(query string) bool {
	for _, kw := range s.opts.ListingKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}
