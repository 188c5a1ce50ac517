package fetch

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tripdata/internal/storage"
)

// Downloader pulls archives over HTTP and lands them in the object store
// under Prefix, keyed by the URL's base name.
type Downloader struct {
	Client  *Client
	Objects storage.ObjectStore

	// Prefix is prepended to every stored key, e.g. "source_zips/".
	Prefix string

	// Concurrency bounds parallel downloads; values below 1 mean 4.
	Concurrency int

	Log zerolog.Logger
}

// Fetch downloads every URL concurrently and returns the stored keys in
// lexical order. The first failure cancels the remaining downloads.
func (d *Downloader) Fetch(ctx context.Context, urls []string) ([]string, error) {
	limit := d.Concurrency
	if limit < 1 {
		limit = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var (
		mu   sync.Mutex
		keys []string
	)
	for _, u := range urls {
		u := u
		g.Go(func() error {
			key, err := d.fetchOne(ctx, u)
			if err != nil {
				return err
			}
			mu.Lock()
			keys = append(keys, key)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func (d *Downloader) fetchOne(ctx context.Context, rawURL string) (string, error) {
	name, err := baseName(rawURL)
	if err != nil {
		return "", err
	}
	key := d.Prefix + name

	d.Log.Info().Str("url", rawURL).Str("key", key).Msg("downloading archive")

	resp, err := d.Client.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := d.Objects.Put(ctx, key, resp.Body, resp.Header.Get("Content-Type")); err != nil {
		return "", fmt.Errorf("fetch: store %s: %w", key, err)
	}
	return key, nil
}

func baseName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch: parse url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("fetch: url %q has no file name", rawURL)
	}
	return name, nil
}
