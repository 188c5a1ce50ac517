// Package fs implements storage.ObjectStore over a local directory tree.
// Keys map to slash-separated paths below the root. It exists for tests and
// for running the pipeline against already-downloaded archives on disk.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tripdata/internal/storage"
)

// Store is a directory-backed object store.
type Store struct {
	root string
}

// New returns a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fs: create root %s: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Get opens the file for key. Missing files map to storage.ErrNotFound so
// callers can degrade the same way they would on S3.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("fs: get %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fs: get %s: %w", key, err)
	}
	return f, nil
}

// Put writes the object, creating parent directories as needed. contentType
// is ignored; the filesystem has no use for it.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("fs: put %s: %w", key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("fs: put %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("fs: put %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fs: put %s: %w", key, err)
	}
	return nil
}

// List walks the tree and returns keys under prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: list %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Move renames src to dst below the root.
func (s *Store) Move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dstPath := s.path(dst)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("fs: move %s: %w", src, err)
	}
	if err := os.Rename(s.path(src), dstPath); err != nil {
		return fmt.Errorf("fs: move %s -> %s: %w", src, dst, err)
	}
	return nil
}
