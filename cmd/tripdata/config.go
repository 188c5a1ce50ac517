// Config loading for the tripdata CLI. Job files are JSON (see
// internal/config); a handful of deployment-specific fields can be
// overridden from the environment so one job file serves every stage.
package main

import (
	"strings"

	"github.com/spf13/viper"

	"tripdata/internal/config"
)

// envOverrides maps environment keys (under the TRIPDATA_ prefix) to
// config fields, e.g. TRIPDATA_STORAGE_S3_BUCKET.
func loadJob(path string) (config.Job, error) {
	job, err := config.Load(path)
	if err != nil {
		return config.Job{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("TRIPDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("storage.kind"); s != "" {
		job.Storage.Kind = s
	}
	if s := v.GetString("storage.s3.bucket"); s != "" {
		job.Storage.S3.Bucket = s
	}
	if s := v.GetString("storage.s3.region"); s != "" {
		job.Storage.S3.Region = s
	}
	if s := v.GetString("storage.fs.root"); s != "" {
		job.Storage.FS.Root = s
	}
	if s := v.GetString("catalog.dsn"); s != "" {
		job.Catalog.DSN = s
	}
	if s := v.GetString("logging.level"); s != "" {
		job.Logging.Level = s
	}
	return job, nil
}
