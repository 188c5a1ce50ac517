// Package storage defines the object-store boundary the pipeline talks to.
//
// The core never touches S3 or the filesystem directly; it works against the
// ObjectStore interface and lets the subpackages (s3, fs) own the mechanics.
// This mirrors the registry/dataset boundary: everything here is plain
// request/response I/O with no pipeline logic.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for keys that do not exist. Callers that can
// degrade (registry load) check it with errors.Is.
var ErrNotFound = errors.New("storage: object not found")

// ObjectStore is the minimal object API the pipeline needs: S3-shaped, but
// equally satisfied by a local directory for tests and development.
type ObjectStore interface {
	// Get returns a reader for the object at key. The caller closes it.
	// Missing keys return ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes the object at key, replacing any existing content.
	// contentType may be empty.
	Put(ctx context.Context, key string, body io.Reader, contentType string) error

	// List returns the keys under prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Move copies src to dst and removes src. Used to archive consumed
	// zip files out of the ingest prefix.
	Move(ctx context.Context, src, dst string) error
}
