package dataset

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: upload a .csv or .xlsx file")
	ErrEmptyFile         = errors.New("file contains no header row")
)

// Format is the container format of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Table is an untyped table as read from an upload. Every row has exactly
// len(Columns) cells. A Table is never mutated after Read returns it.
type Table struct {
	Columns []string
	Rows    [][]string
	// Charset is the source encoding of delimited text; empty for workbooks.
	Charset string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Head returns at most n leading rows.
func (t Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}

	return t.Rows[:n]
}

// Reader parses one container format.
type Reader interface {
	Read(r io.Reader) (Table, error)
}

// FormatOf maps a file name to its format by extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}

	return "", fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, filepath.Ext(filename))
}

// Read picks a reader by the file extension and parses r.
func Read(filename string, r io.Reader) (Table, Format, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return Table{}, "", err
	}

	var reader Reader

	switch format {
	case FormatCSV:
		reader = NewCSVReader()
	case FormatXLSX:
		reader = NewXLSXReader()
	}

	t, err := reader.Read(r)
	if err != nil {
		return Table{}, "", fmt.Errorf("reading %s: %w", format, err)
	}

	return t, format, nil
}

// build turns raw records into a Table: the first non-blank record is the
// header, following blank records are skipped, and rows are padded or cut to
// the header width.
func build(records [][]string) (Table, error) {
	headerIdx := -1

	for i, rec := range records {
		if !blank(rec) {
			headerIdx = i
			break
		}
	}

	if headerIdx < 0 {
		return Table{}, ErrEmptyFile
	}

	cols := headerNames(records[headerIdx])
	rows := make([][]string, 0, len(records)-headerIdx-1)

	for _, rec := range records[headerIdx+1:] {
		if blank(rec) {
			continue
		}

		row := make([]string, len(cols))
		for i := range row {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}

		rows = append(rows, row)
	}

	return Table{Columns: cols, Rows: rows}, nil
}

// headerNames trims names, fills empty ones as "Unnamed: i" and suffixes
// repeated names with ".1", ".2", ... skipping suffixes already taken by
// another header, so every returned name is unique.
func headerNames(rec []string) []string {
	names := make([]string, len(rec))
	taken := make(map[string]bool, len(rec))

	for i, name := range rec {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		names[i] = name
		taken[name] = true
	}

	cols := make([]string, len(rec))
	used := make(map[string]bool, len(rec))
	next := make(map[string]int, len(rec))

	for i, name := range names {
		if !used[name] {
			used[name] = true
			cols[i] = name

			continue
		}

		candidate := name
		for used[candidate] || taken[candidate] {
			next[name]++
			candidate = fmt.Sprintf("%s.%d", name, next[name])
		}

		used[candidate] = true
		cols[i] = candidate
	}

	return cols
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
