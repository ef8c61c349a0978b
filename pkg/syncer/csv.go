package syncer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"
)

// CSVColumns returns the sorted union of column names across rows, giving
// file and object-store syncers a deterministic header regardless of map
// iteration order or ragged rows.
func CSVColumns(rows []Record) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for name := range row {
			seen[name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

// WriteCSV renders rows with a header line. Nil values become empty cells
// (CSV has no null) and timestamps are RFC3339.
func WriteCSV(w io.Writer, rows []Record, delimiter rune) error {
	writer := csv.NewWriter(w)
	if delimiter != 0 {
		writer.Comma = delimiter
	}

	columns := CSVColumns(rows)
	if err := writer.Write(columns); err != nil {
		return err
	}

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			cells[i] = FormatValue(row[name])
		}
		if err := writer.Write(cells); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV parses header-prefixed CSV back into rows. Cell values come back as
// strings; typing them again is the caller's concern.
func ReadCSV(r io.Reader, delimiter rune) ([]Record, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []Record
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Record, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FormatValue renders a record value for text encodings: empty string for
// nil, RFC3339 for timestamps, %v for everything else.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case time.Time:
		return value.Format(time.RFC3339)
	case string:
		return value
	default:
		return fmt.Sprintf("%v", value)
	}
}
