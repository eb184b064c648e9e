package client

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedInput is returned when the fetched payload cannot be parsed as
// tabular text at all. The whole fetch is discarded; no partial rows are
// returned from a syntactically broken payload.
var ErrMalformedInput = errors.New("malformed tabular input")

// RawRow maps a header column name to the trimmed field value from one
// record line. Rows are ephemeral: they exist only between fetch and
// normalization.
type RawRow map[string]string

// parseTable parses CSV text into header-mapped rows. The first line defines
// column names; every expected column must be present. Blank lines are
// skipped and fields are trimmed. A header-only payload yields an empty
// slice, not an error.
func parseTable(raw []byte, expectedColumns []string) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedInput)
	}

	header := make([]string, len(records[0]))
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
		index[header[i]] = i
	}

	for _, name := range expectedColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedInput, name)
		}
	}

	rows := make([]RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
