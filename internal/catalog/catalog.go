// Package catalog tracks which source files the pipeline has processed and
// where their output landed, so reruns can skip work and operators can trace
// any parquet file back to its source archive.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/zeebo/xxh3"
)

// Record is one processed source file.
type Record struct {
	// SourceKey identifies the dataset the file belongs to, e.g. "jc_2021_01".
	SourceKey string

	// FileKey is the object-store key of the extracted source file.
	FileKey string

	// Destination is the object-store key of the parquet output.
	Destination string

	RowCount    int
	ColumnCount int

	// ContentHash fingerprints the raw file bytes; see Hash.
	ContentHash string

	ProcessedAt time.Time
}

// Catalog is the processed-file ledger. Implementations live in the sqlite
// and postgres subpackages.
type Catalog interface {
	// Init creates the backing schema if it does not exist.
	Init(ctx context.Context) error

	// Add appends a record. Records are never updated or deleted.
	Add(ctx context.Context, rec Record) error

	// Seen reports whether a file with this content hash was already
	// processed, regardless of the key it arrived under.
	Seen(ctx context.Context, contentHash string) (bool, error)

	// BySource returns the records for one source key, oldest first.
	BySource(ctx context.Context, sourceKey string) ([]Record, error)

	Close() error
}

// Hash fingerprints raw file bytes as a fixed-width hex string.
func Hash(b []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(b))
}
