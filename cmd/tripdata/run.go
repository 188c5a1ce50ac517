// Run command: the full batch — download, expand, normalize, write, record.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tripdata/internal/config"
	"tripdata/internal/fetch"
	"tripdata/internal/metrics"
)

var skipFetch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch pipeline",
	Long: `Run downloads the configured source archives, expands them, processes
every member file against the schema registry, and writes parquet output.
Already-downloaded archives under the source prefix are processed too.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "process existing archives without downloading")
}

func runRun(cmd *cobra.Command, args []string) error {
	job, err := loadJob(configFile)
	if err != nil {
		return err
	}
	issues := config.ValidateJob(job)
	for _, iss := range issues {
		fmt.Fprintln(os.Stderr, iss.Error())
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration has errors")
	}

	log := buildLogger(job)
	if err := installMetrics(job); err != nil {
		return err
	}
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush failed")
		}
	}()

	objects, err := buildStore(job)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ledger, err := buildLedger(ctx, job)
	if err != nil {
		return err
	}
	if ledger != nil {
		defer ledger.Close()
	}

	if !skipFetch {
		urls, err := fetchURLs(job)
		if err != nil {
			return err
		}
		if len(urls) > 0 {
			d := &fetch.Downloader{
				Client:      fetch.NewClient(fetch.ClientConfig{}),
				Objects:     objects,
				Prefix:      job.Prefixes.SourceZips,
				Concurrency: job.Fetch.Concurrency,
				Log:         log,
			}
			start := time.Now()
			keys, err := d.Fetch(ctx, urls)
			metrics.RecordStep(job.Name, "fetch", err, time.Since(start))
			if err != nil {
				return fmt.Errorf("download: %w", err)
			}
			log.Info().Int("archives", len(keys)).Msg("download complete")
		}
	}

	zips, err := objects.List(ctx, job.Prefixes.SourceZips)
	if err != nil {
		return fmt.Errorf("list archives: %w", err)
	}
	if len(zips) == 0 {
		log.Warn().Str("prefix", job.Prefixes.SourceZips).Msg("no archives to process")
		return nil
	}

	p := buildPipeline(job, objects, ledger, log)
	sum, err := p.ProcessArchives(ctx, zips)
	if err != nil {
		return err
	}

	log.Info().
		Int("processed", sum.Processed).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Int("new_columns", sum.NewColumns).
		Msg("run complete")

	out, err := json.MarshalIndent(summaryView(sum), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", sum.Failed)
	}
	return nil
}
