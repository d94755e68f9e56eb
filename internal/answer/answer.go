// Package answer turns an assembled document context and a question into a
// final answer. A generative model is the primary path; a rule-based topic
// fallback guarantees the caller always gets an answer even when the model
// is unconfigured or down.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Generator produces an answer from a fully built prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	Question string
	Context  string
	Sources  []string
}

type Synthesizer struct {
	gen    Generator
	topics []Topic
}

// NewSynthesizer wires the primary generator (nil disables it, leaving the
// fallback as the only path) and the fallback topic table.
func NewSynthesizer(gen Generator, topics []Topic) *Synthesizer {
	return &Synthesizer{gen: gen, topics: topics}
}

// Answer never fails: generator errors are logged and absorbed by the
// topic fallback.
func (s *Synthesizer) Answer(ctx context.Context, req Request) string {
	if s.gen != nil {
		text, err := s.gen.Generate(ctx, buildPrompt(req))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			slog.ErrorContext(ctx, "answer generation failed, using fallback", "error", err)
		}
	}
	return s.fallback(req)
}

func (s *Synthesizer) fallback(req Request) string {
	q := strings.ToLower(req.Question)

	for _, topic := range s.topics {
		for _, kw := range topic.Keywords {
			if strings.Contains(q, kw) {
				return s.render(topic, req)
			}
		}
	}
	return s.render(genericTopic, req)
}

func (s *Synthesizer) render(topic Topic, req Request) string {
	msg := topic.Template
	if len(req.Sources) > 0 {
		msg += fmt.Sprintf("\n\nRelevant documents: %s", strings.Join(req.Sources, ", "))
	}
	return msg
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an assistant answering questions about a user's uploaded documents.\n\n")
	b.WriteString("DOCUMENT CONTEXT:\n")
	b.WriteString(req.Context)
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(req.Question)
	b.WriteString("\n\nAnswer using only the information in the document context above, ")
	b.WriteString("and mention which document(s) the answer comes from. ")
	b.WriteString("If the context does not contain the answer, say that the uploaded documents do not cover it.")

	if strings.Contains(req.Context, "[TABLE_") {
		b.WriteString("\n\nSome content is tabular, fenced between [TABLE_n] and [/TABLE_n] markers ")
		b.WriteString("with columns separated by \" | \". When your answer draws on a table, render ")
		b.WriteString("the relevant rows as a markdown table, for example:\n")
		b.WriteString("| Part | Qty |\n|------|-----|\n| Hammer | 12 |")
	}

	return b.String()
}
