// Package loccsv reads the line-of-code table produced by elocuent-style
// tooling: one CSV row per line of code, tagged with the commit that last
// touched it.
package loccsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/neilberkman/locscope/internal/core/models"
)

// Column names recognised in the header row
const (
	ColCommit   = "commit"
	ColFile     = "file"
	ColLine     = "line"
	ColType     = "type"
	ColDepth    = "depth"
	ColLength   = "length"
	ColAuthor   = "author"
	ColDate     = "date"
	ColTime     = "time"
	ColTimezone = "timezone"
	ColDatetime = "datetime"
)

var requiredColumns = []string{
	ColCommit, ColFile, ColLine, ColType, ColDepth, ColLength,
	ColAuthor, ColDate, ColTime, ColTimezone, ColDatetime,
}

// ErrMissingColumn is returned when the header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

// RowError reports a malformed value. Any RowError rejects the whole load.
type RowError struct {
	Line   int    // CSV line number, 1-based, header is line 1
	Column string // offending column, empty for whole-row problems
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParsedFile is a fully parsed loc table
type ParsedFile struct {
	Rows      []models.LineChange
	FilePath  string
	FileSize  int64
	FileMtime time.Time
}

// ParseFile parses a loc CSV file
func ParseFile(path string) (parsed *ParsedFile, err error) {
	file, ferr := os.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open file: %w", ferr)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	rows, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &ParsedFile{
		Rows:      rows,
		FilePath:  path,
		FileSize:  info.Size(),
		FileMtime: info.ModTime(),
	}, nil
}

// Parse reads every row from r. Rows are returned in source order; nothing is
// grouped or sorted here. An empty table (header only, or no input at all)
// yields no rows and no error.
func Parse(r io.Reader) ([]models.LineChange, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return []models.LineChange{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LineChange, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		lineNum, _ := reader.FieldPos(0)
		row, err := parseRow(record, idx, lineNum)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.ToLower(name)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseRow(record []string, idx map[string]int, lineNum int) (models.LineChange, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	row := models.LineChange{
		CommitID: field(ColCommit),
		File:     field(ColFile),
		Type:     field(ColType),
		Author:   field(ColAuthor),
		Date:     field(ColDate),
		Time:     field(ColTime),
		Timezone: field(ColTimezone),
	}

	ints := []struct {
		col string
		dst *int
		min int
	}{
		{ColLine, &row.Line, 1},
		{ColDepth, &row.Depth, 0},
		{ColLength, &row.Length, 0},
	}
	for _, f := range ints {
		raw := field(f.col)
		n, err := strconv.Atoi(raw)
		if err != nil {
			return row, &RowError{Line: lineNum, Column: f.col, Value: raw, Err: errors.New("not an integer")}
		}
		if n < f.min {
			return row, &RowError{Line: lineNum, Column: f.col, Value: raw, Err: fmt.Errorf("must be at least %d", f.min)}
		}
		*f.dst = n
	}

	loc, err := ParseOffset(row.Timezone)
	if err != nil {
		return row, &RowError{Line: lineNum, Column: ColTimezone, Value: row.Timezone, Err: err}
	}

	row.Datetime, err = ParseDatetime(field(ColDatetime), loc)
	if err != nil {
		return row, &RowError{Line: lineNum, Column: ColDatetime, Value: field(ColDatetime), Err: err}
	}

	row.Day, err = parseDay(row.Date, row.Datetime, loc)
	if err != nil {
		return row, &RowError{Line: lineNum, Column: ColDate, Value: row.Date, Err: err}
	}

	if err := row.Validate(); err != nil {
		return row, &RowError{Line: lineNum, Err: err}
	}

	return row, nil
}
