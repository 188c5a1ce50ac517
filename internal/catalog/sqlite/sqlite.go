// Package sqlite implements catalog.Catalog on SQLite via database/sql.
// It is the default backend: a single-file ledger with no server to run,
// which suits a batch job that processes a handful of archives per month.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tripdata/internal/catalog"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS processed_files (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	source_key    TEXT    NOT NULL,
	file_key      TEXT    NOT NULL,
	destination   TEXT    NOT NULL,
	row_count     INTEGER NOT NULL,
	column_count  INTEGER NOT NULL,
	content_hash  TEXT    NOT NULL,
	processed_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_files_hash   ON processed_files (content_hash);
CREATE INDEX IF NOT EXISTS idx_processed_files_source ON processed_files (source_key);
`

// Ledger is a SQLite-backed catalog.
type Ledger struct {
	db *sql.DB
}

var _ catalog.Catalog = (*Ledger)(nil)

// Open connects to the SQLite database at dsn, e.g. "catalog.db" or
// "file:catalog.db?cache=shared".
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Init creates the ledger tables if they do not exist.
func (l *Ledger) Init(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// Add appends one processed-file record.
func (l *Ledger) Add(ctx context.Context, rec catalog.Record) error {
	const q = `INSERT INTO processed_files
		(source_key, file_key, destination, row_count, column_count, content_hash, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := l.db.ExecContext(ctx, q,
		rec.SourceKey, rec.FileKey, rec.Destination,
		rec.RowCount, rec.ColumnCount, rec.ContentHash,
		rec.ProcessedAt.UTC())
	if err != nil {
		return fmt.Errorf("sqlite: add record for %s: %w", rec.FileKey, err)
	}
	return nil
}

// Seen reports whether a record with this content hash exists.
func (l *Ledger) Seen(ctx context.Context, contentHash string) (bool, error) {
	const q = `SELECT COUNT(1) FROM processed_files WHERE content_hash = ?`
	var n int
	if err := l.db.QueryRowContext(ctx, q, contentHash).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite: seen %s: %w", contentHash, err)
	}
	return n > 0, nil
}

// BySource returns the records for sourceKey, oldest first.
func (l *Ledger) BySource(ctx context.Context, sourceKey string) ([]catalog.Record, error) {
	const q = `SELECT source_key, file_key, destination, row_count, column_count, content_hash, processed_at
		FROM processed_files WHERE source_key = ? ORDER BY id`
	rows, err := l.db.QueryContext(ctx, q, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", sourceKey, err)
	}
	defer rows.Close()

	var out []catalog.Record
	for rows.Next() {
		var rec catalog.Record
		if err := rows.Scan(&rec.SourceKey, &rec.FileKey, &rec.Destination,
			&rec.RowCount, &rec.ColumnCount, &rec.ContentHash, &rec.ProcessedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate records: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	return l.db.Close()
}
