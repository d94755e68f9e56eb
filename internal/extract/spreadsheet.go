package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet extracts xlsx/xls workbooks sheet by sheet. Multi-column
// sheets become [TABLE_n] fences with pipe-joined rows; single-column
// sheets become a flat value list. Data rows inside a fence are capped at
// MaxRows with a truncation note.
type Spreadsheet struct {
	MaxRows int
}

func (e *Spreadsheet) Extract(ctx context.Context, data []byte, filename string) Result {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return failedResult(fmt.Sprintf("could not open spreadsheet: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()

	var b strings.Builder
	fmt.Fprintf(&b, "EXCEL FILE: %s\n", filename)
	fmt.Fprintf(&b, "Total Sheets: %d\n", len(sheets))
	fmt.Fprintf(&b, "Sheets: %s\n", strings.Join(sheets, ", "))

	tableNum := 0
	for _, sheet := range sheets {
		fmt.Fprintf(&b, "\n--- Sheet: %s ---\n", sheet)

		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Fprintf(&b, "Error reading sheet: %v\n", err)
			continue
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			b.WriteString("Empty sheet or no data found.\n")
			continue
		}

		header := rows[0]
		dataRows := rows[1:]
		fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", len(dataRows), len(header))

		if len(header) > 1 {
			tableNum++
			e.writeTable(&b, tableNum, sheet, header, dataRows)
		} else {
			for i, row := range dataRows {
				fmt.Fprintf(&b, "Row %d: %s\n", i+1, row[0])
			}
		}

		fmt.Fprintf(&b, "Columns: %s\n", strings.Join(header, ", "))
	}

	return textResult(b.String())
}

func (e *Spreadsheet) writeTable(b *strings.Builder, num int, sheet string, header []string, rows [][]string) {
	fmt.Fprintf(b, "\n[TABLE_%d]\n", num)
	fmt.Fprintf(b, "Data Table from Sheet: %s\n", sheet)
	b.WriteString(strings.Join(header, " | "))
	b.WriteString("\n")

	shown := rows
	if e.MaxRows > 0 && len(rows) > e.MaxRows {
		shown = rows[:e.MaxRows]
	}
	for _, row := range shown {
		b.WriteString(strings.Join(padRow(row, len(header)), " | "))
		b.WriteString("\n")
	}
	if len(shown) < len(rows) {
		fmt.Fprintf(b, "... (showing first %d of %d rows)\n", len(shown), len(rows))
	}

	fmt.Fprintf(b, "[/TABLE_%d]\n\n", num)
}

// padRow extends a ragged row to the header width. excelize drops trailing
// empty cells from GetRows.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
