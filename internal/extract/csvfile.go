package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSV renders the file as a pipe-joined data table followed by a column,
// row count and per-column type summary.
type CSV struct{}

func (e *CSV) Extract(ctx context.Context, data []byte, filename string) Result {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return failedResult(fmt.Sprintf("could not parse CSV: %v", err))
	}
	if len(records) == 0 {
		return degradedResult(fmt.Sprintf("CSV FILE: %s (no rows)", filename))
	}

	header := records[0]
	dataRows := records[1:]

	var b strings.Builder
	b.WriteString("CSV DATA TABLE:\n")
	for _, rec := range records {
		b.WriteString(strings.Join(rec, " | "))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nColumns: %s\n", strings.Join(header, ", "))
	fmt.Fprintf(&b, "Rows: %d\n", len(dataRows))
	fmt.Fprintf(&b, "Data types: %s\n", strings.Join(columnTypes(header, dataRows), ", "))

	return textResult(b.String())
}

func columnTypes(header []string, rows [][]string) []string {
	types := make([]string, len(header))
	for col, name := range header {
		kind := "number"
		empty := true
		for _, row := range rows {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				continue
			}
			empty = false
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err != nil {
				kind = "text"
				break
			}
		}
		if empty {
			kind = "text"
		}
		types[col] = fmt.Sprintf("%s: %s", name, kind)
	}
	return types
}
