package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts page text in page order, each page prefixed with a page
// marker, and scans page layout rows for table-like blocks. Detected tables
// are appended after the body text as numbered [TABLE_n] fences.
type PDF struct{}

func (e *PDF) Extract(ctx context.Context, data []byte, filename string) Result {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failedResult(fmt.Sprintf("could not parse PDF: %v", err))
	}

	var body strings.Builder
	var tables []pdfTable

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err == nil && strings.TrimSpace(text) != "" {
			fmt.Fprintf(&body, "--- Page %d ---\n", i)
			body.WriteString(strings.Join(strings.Fields(text), " "))
			body.WriteString("\n")
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		tables = append(tables, detectTables(layoutRows(rows), i)...)
	}

	out := body.String()
	for n, t := range tables {
		out += fmt.Sprintf("\n\n[TABLE_%d]\n%s\n%s[/TABLE_%d]\n\n", n+1, t.title, t.render(), n+1)
	}

	if strings.TrimSpace(out) == "" {
		return degradedResult(fmt.Sprintf("PDF FILE: %s (no extractable text)", filename))
	}
	return textResult(out)
}

type pdfTable struct {
	title string
	rows  [][]string
}

func (t pdfTable) render() string {
	var b strings.Builder
	for _, row := range t.rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

// cellGap is the horizontal distance (points) between text runs that starts
// a new cell when reconstructing layout rows.
const cellGap = 12.0

// layoutRows converts the page's positioned text runs into rows of cells,
// splitting on horizontal gaps.
func layoutRows(rows pdf.Rows) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		var cells []string
		var cur strings.Builder
		var lastEnd float64

		for i, t := range row.Content {
			if i > 0 && t.X-lastEnd > cellGap && strings.TrimSpace(cur.String()) != "" {
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
			cur.WriteString(t.S)
			lastEnd = t.X + t.W
		}
		if strings.TrimSpace(cur.String()) != "" {
			cells = append(cells, strings.TrimSpace(cur.String()))
		}
		if len(cells) > 0 {
			out = append(out, cells)
		}
	}
	return out
}

// detectTables finds table-like blocks: at least 3 consecutive multi-cell
// rows with a consistent column count, containing a digit or more than 2
// columns. The heuristic both misses real tables and flags repeated layouts;
// it is kept as-is.
func detectTables(rows [][]string, pageNum int) []pdfTable {
	var tables []pdfTable
	var block [][]string

	flush := func() {
		if isTableBlock(block) {
			tables = append(tables, pdfTable{
				title: fmt.Sprintf("Table from Page %d", pageNum),
				rows:  block,
			})
		}
		block = nil
	}

	for _, row := range rows {
		if len(row) >= 2 {
			block = append(block, row)
			continue
		}
		flush()
	}
	flush()

	return tables
}

func isTableBlock(rows [][]string) bool {
	if len(rows) < 3 {
		return false
	}

	cols := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != cols {
			return false
		}
	}

	if cols > 2 {
		return true
	}
	for _, row := range rows {
		for _, cell := range row {
			if strings.ContainsAny(cell, "0123456789") {
				return true
			}
		}
	}
	return false
}
