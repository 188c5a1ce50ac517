// Package frame implements the in-memory, column-oriented dataset passed
// between the parser, the schema registry, and the transform engine.
//
// A Frame is deliberately simple: an ordered list of named columns, each
// holding a []any of equal length. Cells are one of string, int64, float64,
// bool, time.Time, or nil (absent). Column order is significant and preserved
// by every operation; readers and writers rely on it.
package frame

import (
	"fmt"
	"time"
)

// DType is the observed logical type of a column.
type DType string

const (
	TypeString DType = "string"
	TypeInt    DType = "int64"
	TypeFloat  DType = "float64"
	TypeBool   DType = "bool"
	TypeTime   DType = "timestamp"
)

// Column is one named, typed value vector.
type Column struct {
	Name   string
	Type   DType
	Values []any
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	cols  []Column
	index map[string]int // name -> position in cols
	rows  int
}

// New returns an empty frame with the given expected row count (used only to
// size appended columns; pass 0 when unknown).
func New(rows int) *Frame {
	return &Frame{index: map[string]int{}, rows: rows}
}

// Rows reports the number of rows.
func (f *Frame) Rows() int { return f.rows }

// Width reports the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Names returns the column names in order. The slice is a copy.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name
	}
	return out
}

// Columns returns the underlying columns in order. Callers must treat the
// returned slice as read-only; mutate through the Frame methods instead.
func (f *Frame) Columns() []Column { return f.cols }

// Column returns the column with the given name.
func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.cols[i], true
}

// Has reports whether a column with the given name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// AddColumn appends a column. The value slice length must match the frame's
// row count unless the frame is still empty, in which case it defines it.
// Duplicate names are rejected: silently overwriting a column is exactly the
// failure mode the transform engine exists to detect.
func (f *Frame) AddColumn(name string, typ DType, values []any) error {
	if _, dup := f.index[name]; dup {
		return fmt.Errorf("frame: duplicate column %q", name)
	}
	if len(f.cols) == 0 && f.rows == 0 {
		f.rows = len(values)
	}
	if len(values) != f.rows {
		return fmt.Errorf("frame: column %q has %d values, frame has %d rows", name, len(values), f.rows)
	}
	f.index[name] = len(f.cols)
	f.cols = append(f.cols, Column{Name: name, Type: typ, Values: values})
	return nil
}

// AddConst appends a column holding the same value in every row.
func (f *Frame) AddConst(name string, typ DType, value any) error {
	values := make([]any, f.rows)
	for i := range values {
		values[i] = value
	}
	return f.AddColumn(name, typ, values)
}

// Replace swaps the values and type of an existing column in place.
func (f *Frame) Replace(name string, typ DType, values []any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("frame: no column %q", name)
	}
	if len(values) != f.rows {
		return fmt.Errorf("frame: column %q has %d values, frame has %d rows", name, len(values), f.rows)
	}
	f.cols[i].Type = typ
	f.cols[i].Values = values
	return nil
}

// Rename applies a bulk column rename. Every current column must appear as a
// key in names; a mapping that would make two source columns collide on one
// destination name returns an error naming both sources. Order is preserved.
func (f *Frame) Rename(names map[string]string) error {
	seen := make(map[string]string, len(f.cols)) // new name -> first source
	for _, c := range f.cols {
		to, ok := names[c.Name]
		if !ok || to == "" {
			return fmt.Errorf("frame: rename map missing column %q", c.Name)
		}
		if first, dup := seen[to]; dup {
			return fmt.Errorf("frame: columns %q and %q both rename to %q", first, c.Name, to)
		}
		seen[to] = c.Name
	}
	index := make(map[string]int, len(f.cols))
	for i := range f.cols {
		f.cols[i].Name = names[f.cols[i].Name]
		index[f.cols[i].Name] = i
	}
	f.index = index
	return nil
}

// InferDType samples a value vector and reports the narrowest DType that
// describes its non-nil cells, preferring int64 over float64 over bool over
// timestamp, with string as the fallback. Mixed vectors degrade to string.
// An all-nil (or empty) vector is reported as string.
func InferDType(values []any) DType {
	var found DType
	for _, v := range values {
		if v == nil {
			continue
		}
		var t DType
		switch v.(type) {
		case int64, int:
			t = TypeInt
		case float64:
			t = TypeFloat
		case bool:
			t = TypeBool
		case time.Time:
			t = TypeTime
		default:
			return TypeString
		}
		switch {
		case found == "":
			found = t
		case found == t:
			// still homogeneous
		case found == TypeInt && t == TypeFloat, found == TypeFloat && t == TypeInt:
			found = TypeFloat
		default:
			return TypeString
		}
	}
	if found == "" {
		return TypeString
	}
	return found
}
