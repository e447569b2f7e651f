package survey

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseError indicates the source file could not be ingested at all:
// a missing or malformed header row, or a file with no data rows.
// Individual malformed data rows are skipped and counted instead.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Table is the tokenized form of a CSV source: a header row plus data
// rows normalized to the header width.
type Table struct {
	Headers []string
	Rows    [][]string
	// Defects counts data rows dropped because they failed RFC-4180
	// tokenization (e.g. an unterminated quote).
	Defects int
}

// Parse tokenizes comma-delimited text with RFC-4180 quoting. The first
// record is the header and is required; a malformed header is fatal.
// Malformed data rows are skipped with Defects incremented rather than
// aborting the whole file.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Reason: "empty file"}
		}
		return nil, &ParseError{Reason: "malformed header", Err: err}
	}
	ncol := len(header)
	headers := make([]string, ncol)
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	t := &Table{Headers: headers}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Defects++
			continue
		}
		row := make([]string, ncol)
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, &ParseError{Reason: "no data rows"}
	}
	return t, nil
}

// ParseBytes is a convenience wrapper over Parse for in-memory sources.
func ParseBytes(b []byte) (*Table, error) {
	return Parse(bytes.NewReader(b))
}
