// Package pipeline drives a batch run end to end: expand downloaded
// archives, parse and canonicalize each member file, write parquet output,
// and persist the updated schema registry.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tripdata/internal/archive"
	"tripdata/internal/catalog"
	"tripdata/internal/frame"
	"tripdata/internal/meta"
	"tripdata/internal/metrics"
	"tripdata/internal/parquet"
	csvparser "tripdata/internal/parser/csv"
	"tripdata/internal/schema"
	"tripdata/internal/storage"
	"tripdata/internal/transform"
)

// Pipeline wires the processing stages over one object store.
type Pipeline struct {
	Objects  storage.ObjectStore
	Registry storage.RegistryStore

	// Ledger is optional; nil disables processed-file tracking and the
	// duplicate-content skip.
	Ledger catalog.Catalog

	// Job names the run for logs and metrics.
	Job string

	// ResultPrefix is where expanded archive members live, ProcessedPrefix
	// is the parquet output root, ArchivePrefix receives consumed zips.
	ResultPrefix    string
	ProcessedPrefix string
	ArchivePrefix   string

	Log zerolog.Logger

	// Now is the clock seam for registry timestamps; nil means time.Now.
	Now func() time.Time
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Key         string
	Destination string
	Rows        int
	Columns     int
	Skipped     bool
	Err         error
}

// Summary aggregates a run.
type Summary struct {
	Processed  int
	Failed     int
	Skipped    int
	NewColumns int
	Results    []FileResult
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run processes the given source files against a freshly loaded registry.
//
// A file that fails is recorded and skipped; the run continues. The registry
// is saved exactly once, after the loop, and a save failure fails the run:
// losing first-seen records would corrupt every later run's view of history.
func (p *Pipeline) Run(ctx context.Context, keys []string) (Summary, error) {
	reg, cause := p.Registry.Load(ctx)
	if cause != nil {
		p.Log.Warn().Err(cause).Str("key", p.Registry.Key).
			Msg("registry unavailable, starting empty")
	}
	knownColumns := len(reg.Columns)

	var sum Summary
	for _, key := range keys {
		res := p.processFile(ctx, reg, key)
		sum.Results = append(sum.Results, res)
		switch {
		case res.Err != nil:
			sum.Failed++
			metrics.RecordFile(p.Job, "failed")
			p.Log.Error().Err(res.Err).Str("key", key).Msg("file failed")
		case res.Skipped:
			sum.Skipped++
			metrics.RecordFile(p.Job, "skipped")
		default:
			sum.Processed++
			metrics.RecordFile(p.Job, "processed")
			metrics.RecordRows(p.Job, int64(res.Rows))
			p.Log.Info().Str("key", key).Str("destination", res.Destination).
				Int("rows", res.Rows).Msg("file processed")
		}
	}

	sum.NewColumns = len(reg.Columns) - knownColumns
	metrics.RecordNewColumns(p.Job, int64(sum.NewColumns))

	if err := p.Registry.Save(ctx, reg); err != nil {
		return sum, fmt.Errorf("pipeline: %w", err)
	}
	return sum, nil
}

// ProcessArchives expands each zip under the result prefix, runs the members,
// and moves consumed zips to the archive prefix. A zip whose expansion fails
// is left in place so a rerun picks it up.
func (p *Pipeline) ProcessArchives(ctx context.Context, zipKeys []string) (Summary, error) {
	var members, consumed []string
	for _, zipKey := range zipKeys {
		start := time.Now()
		got, err := archive.Expand(ctx, p.Objects, zipKey, strings.TrimSuffix(p.ResultPrefix, "/"))
		metrics.RecordStep(p.Job, "expand", err, time.Since(start))
		if err != nil {
			p.Log.Error().Err(err).Str("key", zipKey).Msg("archive expansion failed")
			continue
		}
		members = append(members, got...)
		consumed = append(consumed, zipKey)
	}

	sum, err := p.Run(ctx, members)
	if err != nil {
		return sum, err
	}

	for _, zipKey := range consumed {
		dst := p.ArchivePrefix + path.Base(zipKey)
		if err := p.Objects.Move(ctx, zipKey, dst); err != nil {
			p.Log.Error().Err(err).Str("key", zipKey).Msg("archive move failed")
			continue
		}
		p.Log.Info().Str("key", zipKey).Str("destination", dst).Msg("archive moved")
	}
	return sum, nil
}

// processFile runs one source file through parse, registry update, transform,
// and parquet write.
func (p *Pipeline) processFile(ctx context.Context, reg *schema.Registry, key string) FileResult {
	res := FileResult{Key: key}

	if !strings.EqualFold(path.Ext(key), ".csv") {
		res.Skipped = true
		p.Log.Warn().Str("key", key).Msg("skipping unsupported file format")
		return res
	}

	raw, err := p.readAll(ctx, key)
	if err != nil {
		res.Err = err
		return res
	}

	hash := catalog.Hash(raw)
	if p.Ledger != nil {
		seen, err := p.Ledger.Seen(ctx, hash)
		if err != nil {
			res.Err = fmt.Errorf("pipeline: ledger lookup for %s: %w", key, err)
			return res
		}
		if seen {
			res.Skipped = true
			p.Log.Info().Str("key", key).Str("hash", hash).Msg("content already processed")
			return res
		}
	}

	md := meta.Extract(key)

	start := time.Now()
	parsed, err := csvparser.ReadFrame(bytes.NewReader(raw), csvparser.Options{})
	metrics.RecordStep(p.Job, "parse", err, time.Since(start))
	if err != nil {
		res.Err = fmt.Errorf("pipeline: parse %s: %w", key, err)
		return res
	}
	if parsed.SkippedRows > 0 {
		p.Log.Warn().Str("key", key).Int("rows", parsed.SkippedRows).Msg("dropped malformed rows")
	}

	now := p.now()
	schema.Update(reg, parsed.Frame.Columns(), md, now)

	start = time.Now()
	transformed, err := transform.Apply(parsed.Frame, reg, md)
	metrics.RecordStep(p.Job, "transform", err, time.Since(start))
	if err != nil {
		var collision *transform.RenameCollisionError
		if errors.As(err, &collision) {
			res.Err = fmt.Errorf("pipeline: %s: %w", key, collision)
			return res
		}
		res.Err = fmt.Errorf("pipeline: transform %s: %w", key, err)
		return res
	}
	for _, oc := range transformed.Outcomes {
		if !oc.Applied {
			p.Log.Warn().Str("key", key).Str("column", oc.Column).
				Str("kind", oc.Kind).Msg("coercion fell back to source values")
		}
	}

	dest := p.destination(md, key)
	start = time.Now()
	err = p.writeParquet(ctx, dest, transformed.Frame)
	metrics.RecordStep(p.Job, "write", err, time.Since(start))
	if err != nil {
		res.Err = err
		return res
	}

	res.Destination = dest
	res.Rows = transformed.Frame.Rows()
	res.Columns = transformed.Frame.Width()

	if p.Ledger != nil {
		rec := catalog.Record{
			SourceKey:   md.SourceKey(now.Format("2006")),
			FileKey:     key,
			Destination: dest,
			RowCount:    res.Rows,
			ColumnCount: res.Columns,
			ContentHash: hash,
			ProcessedAt: now,
		}
		if err := p.Ledger.Add(ctx, rec); err != nil {
			res.Err = fmt.Errorf("pipeline: ledger add for %s: %w", key, err)
			return res
		}
	}
	return res
}

func (p *Pipeline) readAll(ctx context.Context, key string) ([]byte, error) {
	rc, err := p.Objects.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("pipeline: open %s: %w", key, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w", key, err)
	}
	return b, nil
}

func (p *Pipeline) writeParquet(ctx context.Context, dest string, f *frame.Frame) error {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, f); err != nil {
		return fmt.Errorf("pipeline: encode %s: %w", dest, err)
	}
	if err := p.Objects.Put(ctx, dest, &buf, "application/octet-stream"); err != nil {
		return fmt.Errorf("pipeline: store %s: %w", dest, err)
	}
	return nil
}

// destination builds the output key:
// {processed}/{region}/{year}[/{month}]/{base}.parquet. Files whose name
// yields no year land under "unknown" so they stay visible instead of
// failing the run.
func (p *Pipeline) destination(md meta.Metadata, key string) string {
	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	year := md.Year
	if year == "" {
		year = "unknown"
	}
	parts := []string{
		strings.TrimSuffix(p.ProcessedPrefix, "/"),
		transform.RegionValue(md.Region),
		year,
	}
	if md.Month != "" {
		parts = append(parts, md.Month)
	}
	parts = append(parts, base+".parquet")
	return path.Join(parts...)
}
