// Package extract converts raw uploaded file bytes into normalized text.
// Extractors are selected by file extension through a Registry; tabular
// regions are emitted inline as [TABLE_n]...[/TABLE_n] fenced blocks so the
// answer synthesizer can render them as markdown tables later.
//
// An extractor never lets an error escape this boundary: parse failures come
// back as a tagged Result that the ingestion service converts into visible
// marker text, so a broken file is still discoverable via search instead of
// silently dropped.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Result is the outcome of one extraction attempt.
//
// Degraded marks placeholder and no-text outcomes: the document is stored,
// but the content is a marker rather than real extracted text.
type Result struct {
	Text     string
	Degraded bool
	Failed   bool
	Reason   string
}

func textResult(s string) Result {
	return Result{Text: s}
}

func degradedResult(s string) Result {
	return Result{Text: s, Degraded: true}
}

func failedResult(reason string) Result {
	return Result{Failed: true, Degraded: true, Reason: reason}
}

// MarkerText returns the content to chunk and store. Failures become marker
// text naming the file, so the failure is searchable rather than lost.
func (r Result) MarkerText(filename string) string {
	if r.Failed {
		return fmt.Sprintf("EXTRACTION FAILED: %s\n%s", filename, r.Reason)
	}
	return r.Text
}

type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) Result
}

// Registry maps file extensions to extractors. Adding a format means
// registering a new extractor, not editing a branch chain.
type Registry struct {
	byExt map[string]Extractor
}

func NewRegistry(ocr OCRClient) *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(&PDF{}, "pdf")
	r.Register(&Spreadsheet{MaxRows: 100}, "xlsx", "xls")
	r.Register(&Image{OCR: ocr}, "png", "jpg", "jpeg")
	r.Register(&CSV{}, "csv")
	r.Register(&Plain{}, "txt")
	r.Register(&Placeholder{Kind: "WORD DOCUMENT"}, "doc", "docx")
	r.Register(&Placeholder{Kind: "POWERPOINT PRESENTATION"}, "ppt", "pptx")
	return r
}

func (r *Registry) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

func (r *Registry) Supported(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Extract runs the extractor registered for ext. The second return value is
// false when the extension is unsupported. A panicking extractor is
// recovered into a failed Result; nothing escapes this boundary.
func (r *Registry) Extract(ctx context.Context, data []byte, filename, ext string) (res Result, ok bool) {
	e, found := r.byExt[strings.ToLower(ext)]
	if !found {
		return Result{}, false
	}

	defer func() {
		if p := recover(); p != nil {
			res = failedResult(fmt.Sprintf("extractor panic: %v", p))
			ok = true
		}
	}()

	return e.Extract(ctx, data, filename), true
}

var (
	spaceRun   = regexp.MustCompile(`[ \t]{2,}`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips NUL bytes and collapses repeated whitespace while
// preserving blank-line section boundaries for the chunker.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
