package review

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput marks an upload that cannot be decoded or parsed, or
// that parses to zero data rows. Import aborts before any record is created.
var ErrMalformedInput = errors.New("malformed input")

// RawRow is one data row keyed by source column name, valid only for the
// duration of a single import call. Columns preserves the header order.
type RawRow struct {
	Columns []string
	Values  map[string]string
}

// Get returns the raw value for a source column, "" when the column is
// absent. Missing columns are never an error at this stage.
func (r RawRow) Get(column string) string {
	if column == "" {
		return ""
	}
	return r.Values[column]
}

// ReadRows decodes an uploaded export into header-keyed rows. Decoding is
// best effort: a UTF-8 BOM is dropped and invalid bytes are replaced rather
// than rejected. Ragged records are tolerated; short records read as empty
// in the trailing columns.
func ReadRows(raw []byte) ([]RawRow, error) {
	text := bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	text = bytes.ToValidUTF8(text, []byte("�"))

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformedInput)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		values := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				values[col] = record[i]
			} else {
				values[col] = ""
			}
		}
		rows = append(rows, RawRow{Columns: header, Values: values})
	}

	return rows, nil
}
