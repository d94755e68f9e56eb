// Package assemble builds the prompt context block from scored chunks.
package assemble

import (
	"fmt"
	"strings"

	"forgedocs/internal/rank"
)

// Assembler packs scored chunks into a bounded context string. Chunks are
// grouped by source file, each group fenced with DOCUMENT markers so the
// synthesizer can attribute answers. Groups are taken in the order their
// files first appear in the ranked input and added whole; packing stops at
// the first group that would blow the character budget. The budget is a
// hard cap, so an oversized first group is dropped rather than included.
type Assembler struct {
	budget int
}

func New(budget int) *Assembler {
	return &Assembler{budget: budget}
}

// Assemble returns the context text and the source filenames it covers, in
// inclusion order.
func (a *Assembler) Assemble(scored []rank.Scored) (string, []string) {
	var order []string
	groups := make(map[string][]string)
	for _, sc := range scored {
		if _, seen := groups[sc.Filename]; !seen {
			order = append(order, sc.Filename)
		}
		groups[sc.Filename] = append(groups[sc.Filename], sc.Content)
	}

	var b strings.Builder
	var sources []string
	for _, filename := range order {
		block := fmt.Sprintf("=== DOCUMENT: %s ===\n%s\n=== END: %s ===\n\n",
			filename, strings.Join(groups[filename], "\n\n"), filename)

		if b.Len()+len(block) > a.budget {
			break
		}
		b.WriteString(block)
		sources = append(sources, filename)
	}

	return strings.TrimSpace(b.String()), sources
}
