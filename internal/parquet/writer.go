// Package parquet serializes frames to parquet, the storage format of the
// processed_data/ tree.
package parquet

import (
	"fmt"
	"io"
	"time"

	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"tripdata/internal/frame"
)

// fieldMeta maps a column to a parquet-go CSV schema line. Every field is
// OPTIONAL: upstream padding and failed coercions leave nil cells behind.
func fieldMeta(c frame.Column) string {
	switch c.Type {
	case frame.TypeInt:
		return fmt.Sprintf("name=%s, type=INT64, repetitiontype=OPTIONAL", c.Name)
	case frame.TypeFloat:
		return fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", c.Name)
	case frame.TypeBool:
		return fmt.Sprintf("name=%s, type=BOOLEAN, repetitiontype=OPTIONAL", c.Name)
	case frame.TypeTime:
		return fmt.Sprintf("name=%s, type=INT64, convertedtype=TIMESTAMP_MILLIS, repetitiontype=OPTIONAL", c.Name)
	default:
		return fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", c.Name)
	}
}

// cell converts a frame value to the parquet base type its column declares.
// Timestamps become epoch milliseconds per TIMESTAMP_MILLIS.
func cell(v any, t frame.DType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case frame.TypeTime:
		ts, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) in timestamp column", v, v)
		}
		return ts.UnixMilli(), nil
	case frame.TypeInt:
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) in int64 column", v, v)
		}
		return n, nil
	case frame.TypeFloat:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) in float64 column", v, v)
		}
		return f, nil
	case frame.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("value %v (%T) in bool column", v, v)
		}
		return b, nil
	default:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("%v", v), nil
		}
		return s, nil
	}
}

// Write serializes f to w as a snappy-compressed parquet file, one row group.
func Write(w io.Writer, f *frame.Frame) error {
	cols := f.Columns()
	md := make([]string, len(cols))
	for i, c := range cols {
		md[i] = fieldMeta(c)
	}

	dst := writerfile.NewWriterFile(w)
	pw, err := writer.NewCSVWriter(md, dst, 1)
	if err != nil {
		return fmt.Errorf("parquet: create writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for row := 0; row < f.Rows(); row++ {
		rec := make([]any, len(cols))
		for i, c := range cols {
			v, err := cell(c.Values[row], c.Type)
			if err != nil {
				return fmt.Errorf("parquet: column %s row %d: %w", c.Name, row, err)
			}
			rec[i] = v
		}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("parquet: write row %d: %w", row, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet: finalize: %w", err)
	}
	return nil
}
