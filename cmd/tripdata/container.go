// Dependency wiring for the tripdata CLI: config values in, constructed
// pipeline components out. All backend selection happens here so commands
// stay declarative.
package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tripdata/internal/catalog"
	catpostgres "tripdata/internal/catalog/postgres"
	catsqlite "tripdata/internal/catalog/sqlite"
	"tripdata/internal/config"
	"tripdata/internal/fetch"
	"tripdata/internal/logger"
	"tripdata/internal/meta"
	"tripdata/internal/metrics"
	"tripdata/internal/metrics/datadog"
	"tripdata/internal/metrics/prompush"
	"tripdata/internal/pipeline"
	"tripdata/internal/storage"
	fsstore "tripdata/internal/storage/fs"
	s3store "tripdata/internal/storage/s3"
)

func buildLogger(job config.Job) zerolog.Logger {
	return logger.New(logger.Options{
		Level:  job.Logging.Level,
		Format: job.Logging.Format,
		Job:    job.Name,
	})
}

func buildStore(job config.Job) (storage.ObjectStore, error) {
	switch job.Storage.Kind {
	case "s3":
		return s3store.New(job.Storage.S3.Bucket, s3store.WithRegion(job.Storage.S3.Region))
	case "fs":
		return fsstore.New(job.Storage.FS.Root)
	default:
		return nil, fmt.Errorf("unknown storage kind %q", job.Storage.Kind)
	}
}

// buildLedger returns nil when the catalog is disabled.
func buildLedger(ctx context.Context, job config.Job) (catalog.Catalog, error) {
	switch job.Catalog.Kind {
	case "":
		return nil, nil
	case "sqlite":
		ledger, err := catsqlite.Open(ctx, job.Catalog.DSN)
		if err != nil {
			return nil, err
		}
		if err := ledger.Init(ctx); err != nil {
			ledger.Close()
			return nil, err
		}
		return ledger, nil
	case "postgres":
		ledger, err := catpostgres.Open(ctx, job.Catalog.DSN)
		if err != nil {
			return nil, err
		}
		if err := ledger.Init(ctx); err != nil {
			ledger.Close()
			return nil, err
		}
		return ledger, nil
	default:
		return nil, fmt.Errorf("unknown catalog kind %q", job.Catalog.Kind)
	}
}

// installMetrics configures the global metrics backend. The default no-op
// backend stays in place when none is configured.
func installMetrics(job config.Job) error {
	switch job.Metrics.Backend {
	case "":
		return nil
	case "prompush":
		b, err := prompush.NewBackend(job.Name, job.Metrics.Options.String("gateway_url", ""))
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		return nil
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       job.Metrics.Options.String("addr", ""),
			Namespace:  job.Metrics.Options.String("namespace", ""),
			GlobalTags: job.Metrics.Options.StringSlice("tags"),
		})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		return nil
	default:
		return fmt.Errorf("unknown metrics backend %q", job.Metrics.Backend)
	}
}

func buildPipeline(job config.Job, objects storage.ObjectStore, ledger catalog.Catalog, log zerolog.Logger) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Objects:         objects,
		Registry:        storage.RegistryStore{Objects: objects, Key: job.Registry.Key},
		Ledger:          ledger,
		Job:             job.Name,
		ResultPrefix:    job.Prefixes.ResultFiles,
		ProcessedPrefix: job.Prefixes.Processed,
		ArchivePrefix:   job.Prefixes.Archive,
		Log:             log,
	}
}

// fetchRegions parses config region names; empty means both feeds.
func fetchRegions(names []string) []meta.Region {
	if len(names) == 0 {
		return []meta.Region{meta.RegionNYC, meta.RegionJC}
	}
	out := make([]meta.Region, 0, len(names))
	for _, n := range names {
		out = append(out, meta.Region(n))
	}
	return out
}

// fetchURLs resolves the archive URL list from the job config.
func fetchURLs(job config.Job) ([]string, error) {
	if job.Fetch.URLList != "" {
		urls, err := fetch.ReadList(job.Fetch.URLList)
		if err != nil {
			return nil, fmt.Errorf("read url list %s: %w", job.Fetch.URLList, err)
		}
		return urls, nil
	}
	return fetch.GenerateURLs(job.Fetch.Years, job.Fetch.Months, fetchRegions(job.Fetch.Regions)), nil
}
