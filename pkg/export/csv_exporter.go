package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders datasets and grid sheets into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}
	return writeCSV(records)
}

// RenderSheet flattens a grid: a header of column labels, then one record per
// day with the day label first. Merged text appears once, at its anchor.
func (e *CSVExporter) RenderSheet(sheet Sheet) ([]byte, error) {
	if len(sheet.ColumnLabels) == 0 {
		return nil, fmt.Errorf("csv requires at least one column")
	}
	records := make([][]string, 0, len(sheet.RowLabels)+1)
	records = append(records, append([]string{""}, sheet.ColumnLabels...))
	for i, row := range sheet.Matrix() {
		records = append(records, append([]string{sheet.RowLabels[i]}, row...))
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}
