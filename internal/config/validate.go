// This file adds a lightweight linter/validator for Job values. It performs
// static checks over a decoded Job and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Job.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "fetch.months"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is severity error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static validation / linting of a Job.
//
// It does not mutate the job. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
//
// Example:
//
//	job, err := config.Load(path)
//	if err != nil { ... }
//	issues := config.ValidateJob(job)
//	for _, iss := range issues {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  "name must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateStorage(j.Storage)...)
	issues = append(issues, validateCatalog(j.Catalog)...)
	issues = append(issues, validateFetch(j.Fetch)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	if strings.TrimSpace(j.Registry.Key) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "registry.key",
			Message:  "registry.key must not be empty",
		})
	}

	return issues
}

// validateStorage validates Storage configuration.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
		return issues
	}

	switch s.Kind {
	case "s3":
		if strings.TrimSpace(s.S3.Bucket) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.s3.bucket",
				Message:  "s3 storage requires a non-empty bucket",
			})
		}
	case "fs":
		if strings.TrimSpace(s.FS.Root) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.fs.root",
				Message:  "fs storage requires a non-empty root directory",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; expected \"s3\" or \"fs\"", s.Kind),
		})
	}

	return issues
}

// validateCatalog validates Catalog configuration. An empty kind disables the
// catalog and is valid.
func validateCatalog(c Catalog) []Issue {
	var issues []Issue

	switch c.Kind {
	case "":
		if strings.TrimSpace(c.DSN) != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "catalog.dsn",
				Message:  "catalog.dsn is set but catalog.kind is empty; the ledger is disabled",
			})
		}
	case "sqlite", "postgres":
		if strings.TrimSpace(c.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "catalog.dsn",
				Message:  fmt.Sprintf("%s catalog requires a non-empty dsn", c.Kind),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "catalog.kind",
			Message:  fmt.Sprintf("unknown catalog kind %q; expected \"sqlite\", \"postgres\", or empty", c.Kind),
		})
	}

	return issues
}

// validateFetch validates Fetch configuration.
func validateFetch(f Fetch) []Issue {
	var issues []Issue

	for i, y := range f.Years {
		if y < 2013 || y > 2100 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("fetch.years[%d]", i),
				Message:  fmt.Sprintf("year %d is outside the published range; the feed starts in 2013", y),
			})
		}
	}
	for i, m := range f.Months {
		if m < 1 || m > 12 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("fetch.months[%d]", i),
				Message:  fmt.Sprintf("month %d is out of range 1..12", m),
			})
		}
	}
	for i, r := range f.Regions {
		if r != "nyc" && r != "jc" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("fetch.regions[%d]", i),
				Message:  fmt.Sprintf("unknown region %q; expected \"nyc\" or \"jc\"", r),
			})
		}
	}
	if f.URLList != "" && len(f.Years) > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "fetch.url_list",
			Message:  "url_list overrides the years/months grid; both are set",
		})
	}

	return issues
}

// validateMetrics validates Metrics configuration.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "":
		// Metrics disabled.
	case "prompush":
		if m.Options.String("gateway_url", "") == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.options.gateway_url",
				Message:  "prompush backend requires gateway_url",
			})
		}
	case "datadog":
		if m.Options.String("addr", "") == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.options.addr",
				Message:  "datadog backend requires addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; expected \"prompush\", \"datadog\", or empty", m.Backend),
		})
	}

	return issues
}
