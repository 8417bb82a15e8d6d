package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"

	"github.com/carterahq/cartera/internal/common"
)

// Source is a parsed statement file: a header row plus data rows keyed by
// header. Rows with all-empty cells are discarded before normalization.
type Source struct {
	Headers []string
	Rows    []RawRow
}

// ReadFile parses a statement file, dispatching on its extension. CSV and
// text files use the given delimiter; .xls reads the first sheet; .ofx/.qfx
// go through the OFX parser.
func ReadFile(path string, delimiter rune) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		return ReadXLS(f)
	case ".ofx", ".qfx":
		return ReadOFX(f)
	default:
		return ReadCSV(f, delimiter)
	}
}

// ReadCSV parses delimited text with a header row.
func ReadCSV(r io.Reader, delimiter rune) (*Source, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, common.ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	src := &Source{Headers: headers}
	for _, record := range records[1:] {
		if row, ok := buildRow(headers, record); ok {
			src.Rows = append(src.Rows, row)
		}
	}
	if len(src.Rows) == 0 {
		return nil, common.ErrEmptyFile
	}
	return src, nil
}

// ReadXLS parses a legacy Excel workbook, first sheet only.
func ReadXLS(r io.ReadSeeker) (*Source, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, common.ErrEmptyFile
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, strings.TrimSpace(row.Col(j)))
		}
		records = append(records, cells)
	}
	if len(records) == 0 {
		return nil, common.ErrEmptyFile
	}

	src := &Source{Headers: records[0]}
	for _, record := range records[1:] {
		if row, ok := buildRow(src.Headers, record); ok {
			src.Rows = append(src.Rows, row)
		}
	}
	if len(src.Rows) == 0 {
		return nil, common.ErrEmptyFile
	}
	return src, nil
}

// buildRow zips a record against the headers, reporting whether any cell has
// content.
func buildRow(headers, record []string) (RawRow, bool) {
	row := make(RawRow, len(headers))
	empty := true
	for i, h := range headers {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		row[h] = value
		if value != "" {
			empty = false
		}
	}
	return row, !empty
}
