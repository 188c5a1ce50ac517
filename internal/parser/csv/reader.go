// Package csv reads raw tabular files into frames.
//
// The reader is tolerant by design: real trip-data archives carry BOMs,
// inconsistently cased and padded headers, unescaped quotes, and the odd
// ragged row. Per-row problems are soft errors — counted and skipped, never
// fatal. Only a missing or unreadable header fails the file.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tripdata/internal/frame"
)

// Options controls CSV decoding. The zero value is correct for Citibike
// exports (comma-separated, header row present).
type Options struct {
	// Comma overrides the field delimiter. Zero means ','.
	Comma rune

	// RawStrings disables column type inference; every cell stays a string
	// (empty cells still become nil).
	RawStrings bool
}

// Result is a decoded file plus its soft-error count.
type Result struct {
	Frame *frame.Frame

	// SkippedRows counts data rows dropped for parse errors or width
	// mismatches. The file still succeeds; callers decide whether to log.
	SkippedRows int
}

// timeLayouts are tried in order when typing a column as timestamps. The
// trip-data feeds switched precision over the years.
var timeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
}

// ReadFrame decodes one CSV stream into a Frame.
//
// The header row is required; each header cell is trimmed and has a UTF-8 BOM
// stripped, but is otherwise passed through untouched — canonicalizing names
// is the schema layer's job, the reader must preserve what the file said.
// Data rows narrower than the header are padded with nils; wider rows are
// counted as skipped. After load, each column is typed by strict whole-column
// inference (int64, float64, bool, timestamp, else string).
func ReadFrame(r io.Reader, opts Options) (Result, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	header = stripHeaderBOM(header)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	width := len(header)

	cells := make([][]string, width)
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(rec) > width {
			skipped++
			continue
		}
		for i := 0; i < width; i++ {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			cells[i] = append(cells[i], v)
		}
	}

	rows := 0
	if width > 0 {
		rows = len(cells[0])
	}
	f := frame.New(rows)
	for i, name := range header {
		typ, values := typeColumn(cells[i], opts.RawStrings)
		if err := f.AddColumn(name, typ, values); err != nil {
			return Result{}, fmt.Errorf("csv column %q: %w", name, err)
		}
	}
	return Result{Frame: f, SkippedRows: skipped}, nil
}

// typeColumn types one column of raw cells. Inference is strict: a type is
// chosen only when every non-empty cell parses as it, so a single stray value
// keeps the whole column textual rather than producing mixed cells.
func typeColumn(raw []string, rawStrings bool) (frame.DType, []any) {
	values := make([]any, len(raw))

	if !rawStrings {
		if ok := tryInts(raw, values); ok {
			return frame.TypeInt, values
		}
		if ok := tryFloats(raw, values); ok {
			return frame.TypeFloat, values
		}
		if ok := tryBools(raw, values); ok {
			return frame.TypeBool, values
		}
		if ok := tryTimes(raw, values); ok {
			return frame.TypeTime, values
		}
	}

	for i, s := range raw {
		if s == "" {
			values[i] = nil
		} else {
			values[i] = s
		}
	}
	return frame.TypeString, values
}

func tryInts(raw []string, out []any) bool {
	nonEmpty := false
	for i, s := range raw {
		if s == "" {
			out[i] = nil
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false
		}
		out[i] = n
		nonEmpty = true
	}
	return nonEmpty
}

func tryFloats(raw []string, out []any) bool {
	nonEmpty := false
	for i, s := range raw {
		if s == "" {
			out[i] = nil
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		out[i] = f
		nonEmpty = true
	}
	return nonEmpty
}

// tryBools accepts only literal true/false (any case); 0/1 belong to ints.
func tryBools(raw []string, out []any) bool {
	nonEmpty := false
	for i, s := range raw {
		if s == "" {
			out[i] = nil
			continue
		}
		switch strings.ToLower(s) {
		case "true":
			out[i] = true
		case "false":
			out[i] = false
		default:
			return false
		}
		nonEmpty = true
	}
	return nonEmpty
}

func tryTimes(raw []string, out []any) bool {
	nonEmpty := false
	for i, s := range raw {
		if s == "" {
			out[i] = nil
			continue
		}
		t, ok := ParseTime(s)
		if !ok {
			return false
		}
		out[i] = t
		nonEmpty = true
	}
	return nonEmpty
}

// ParseTime attempts the known trip-data timestamp layouts in order.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

const utf8BOM = "\uFEFF"

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
