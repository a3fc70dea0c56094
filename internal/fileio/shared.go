package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupported = errors.New("unsupported file type")

// Table - first sheet of a spreadsheet: header names plus data rows keyed by header.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// Supported reports whether ReadTable can parse the file by its extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}

// ReadTable picks a parser by extension. headerRow is 1-based.
func ReadTable(r io.Reader, filename string, headerRow int) (Table, error) {
	if headerRow <= 0 {
		headerRow = 1
	}
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r, headerRow)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return Table{}, nil
	}
	h := pickHeader(rows, headerRow)
	return Table{Header: h, Rows: rowsToMaps(rows, h, headerRow)}, nil
}

// pickHeader takes the header row, fills blanks with "Column N" and suffixes repeated names.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx >= len(rows) {
		idx = 0
	}
	seen := make(map[string]int)
	out := make([]string, len(rows[idx]))
	for i, v := range rows[idx] {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s (%d)", v, n+1)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// rowsToMaps skips everything up to the header and fully empty rows.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell trims cell text and turns non-breaking spaces into plain ones.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\r", " ").Replace(s)
	return strings.TrimSpace(s)
}
