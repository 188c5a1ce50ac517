// Package transform converts a raw decoded frame into its canonical shape:
// columns renamed to canonical names, region-specific corrections applied,
// temporal columns coerced, and lineage columns appended.
//
// Value-level problems never fail a file here. Coercions that cannot complete
// fall back to the original values and report the fallback through a
// CoerceOutcome, so callers (and tests) can observe that the path was taken.
// The one hard failure is a rename collision: two source columns landing on
// the same canonical name would silently destroy data, so it fails the file.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"tripdata/internal/frame"
	"tripdata/internal/meta"
	csvparser "tripdata/internal/parser/csv"
	"tripdata/internal/schema"
)

// Region column literals.
const (
	regionValueNYC = "new_york"
	regionValueJC  = "jersey_city"
)

// jcNamePrefix is prepended to Jersey City station names so they remain
// distinguishable when JC and NYC datasets are unioned downstream.
const jcNamePrefix = "JC - "

// stationIDColumns and stationNameColumns are the canonical columns the
// Jersey City corrections operate on.
var (
	stationIDColumns   = []string{"start_station_id", "end_station_id"}
	stationNameColumns = []string{"start_station_name", "end_station_name"}
)

// temporalKeywords mark canonical column names that should carry timestamps.
var temporalKeywords = []string{"time", "date", "started_at", "ended_at"}

// RegionValue maps a feed region to its lineage column literal. The output
// tree is partitioned by the same value.
func RegionValue(r meta.Region) string {
	if r == meta.RegionJC {
		return regionValueJC
	}
	return regionValueNYC
}

// RenameCollisionError reports two distinct source columns normalizing to the
// same canonical name within one file. It is a file-level failure: proceeding
// would silently overwrite one column's data.
type RenameCollisionError struct {
	Canonical string
	First     string
	Second    string
}

func (e *RenameCollisionError) Error() string {
	return fmt.Sprintf("transform: columns %q and %q both normalize to %q",
		e.First, e.Second, e.Canonical)
}

// CoerceOutcome records one attempted value coercion and whether it stuck.
type CoerceOutcome struct {
	// Column is the canonical column name the coercion targeted.
	Column string

	// Kind is "station_id_numeric" or "timestamp".
	Kind string

	// Applied is false when the coercion fell back to the original values.
	Applied bool
}

// Result is a transformed frame plus the coercion audit trail.
type Result struct {
	Frame    *frame.Frame
	Outcomes []CoerceOutcome
}

// Apply transforms f in place and returns it wrapped in a Result.
//
// Steps, in order: canonical rename (collision-checked), region corrections,
// temporal coercion, region and data_source lineage columns. The registry is
// read-only here; names it has never seen are normalized on the fly so
// transforms keep working on historical data even before Update has run for
// that spelling.
func Apply(f *frame.Frame, reg *schema.Registry, md meta.Metadata) (Result, error) {
	if err := renameCanonical(f, reg, md.Region); err != nil {
		return Result{}, err
	}

	res := Result{Frame: f}

	if md.Region == meta.RegionJC {
		applyJCStationIDs(f, &res)
		applyJCStationNames(f)
	}

	coerceTemporal(f, &res)

	setConst(f, "region", RegionValue(md.Region))
	setConst(f, "data_source", dataSourceTag(md))

	return res, nil
}

// renameCanonical builds and applies the per-file rename map. Lookups go
// through the registry's recorded mappings first, then the static normalizer.
func renameCanonical(f *frame.Frame, reg *schema.Registry, region meta.Region) error {
	names := make(map[string]string, f.Width())
	firstSource := make(map[string]string, f.Width())
	for _, name := range f.Names() {
		canonical := reg.CanonicalFor(name, region)
		if prev, dup := firstSource[canonical]; dup {
			return &RenameCollisionError{Canonical: canonical, First: prev, Second: name}
		}
		firstSource[canonical] = name
		names[name] = canonical
	}
	if err := f.Rename(names); err != nil {
		// Collisions were checked above; anything else is a frame invariant bug.
		return fmt.Errorf("transform: rename: %w", err)
	}
	return nil
}

// applyJCStationIDs strips the JC marker from textual station-id columns and
// then attempts a whole-column numeric upgrade. Non-numeric IDs are legal:
// the upgrade failing just leaves the stripped text in place, recorded as a
// fallback outcome.
func applyJCStationIDs(f *frame.Frame, res *Result) {
	for _, name := range stationIDColumns {
		col, ok := f.Column(name)
		if !ok || col.Type != frame.TypeString {
			continue
		}

		stripped := make([]any, len(col.Values))
		for i, v := range col.Values {
			s, isStr := v.(string)
			if !isStr {
				stripped[i] = v
				continue
			}
			s = strings.ReplaceAll(s, "JC-", "")
			s = strings.ReplaceAll(s, "JC", "")
			stripped[i] = s
		}

		numeric := make([]any, len(stripped))
		allNumeric := true
		for i, v := range stripped {
			s, isStr := v.(string)
			if !isStr {
				numeric[i] = v
				continue
			}
			if s == "" {
				numeric[i] = nil
				continue
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				allNumeric = false
				break
			}
			numeric[i] = n
		}

		if allNumeric {
			_ = f.Replace(name, frame.TypeInt, numeric)
		} else {
			_ = f.Replace(name, frame.TypeString, stripped)
		}
		res.Outcomes = append(res.Outcomes, CoerceOutcome{
			Column:  name,
			Kind:    "station_id_numeric",
			Applied: allNumeric,
		})
	}
}

// applyJCStationNames prefixes station names with the JC marker. Idempotent:
// names already carrying the prefix are left alone.
func applyJCStationNames(f *frame.Frame) {
	for _, name := range stationNameColumns {
		col, ok := f.Column(name)
		if !ok {
			continue
		}
		values := make([]any, len(col.Values))
		for i, v := range col.Values {
			s, isStr := v.(string)
			if !isStr || strings.HasPrefix(s, jcNamePrefix) {
				values[i] = v
				continue
			}
			values[i] = jcNamePrefix + s
		}
		_ = f.Replace(name, frame.TypeString, values)
	}
}

// coerceTemporal upgrades string columns whose canonical name carries a
// temporal keyword to timestamps. The attempt is whole-column: one value that
// refuses every known layout leaves the column untouched (recorded as a
// fallback outcome, never an error).
func coerceTemporal(f *frame.Frame, res *Result) {
	for _, name := range f.Names() {
		if !hasTemporalKeyword(name) {
			continue
		}
		col, _ := f.Column(name)
		if col.Type != frame.TypeString {
			continue
		}

		values := make([]any, len(col.Values))
		ok := true
		for i, v := range col.Values {
			if v == nil {
				values[i] = nil
				continue
			}
			s, isStr := v.(string)
			if !isStr {
				ok = false
				break
			}
			t, parsed := csvparser.ParseTime(s)
			if !parsed {
				ok = false
				break
			}
			values[i] = t
		}

		if ok {
			_ = f.Replace(name, frame.TypeTime, values)
		}
		res.Outcomes = append(res.Outcomes, CoerceOutcome{
			Column:  name,
			Kind:    "timestamp",
			Applied: ok,
		})
	}
}

func hasTemporalKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range temporalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// dataSourceTag builds the lineage tag region_year[_month]. Files without a
// year are tagged "unknown" rather than guessing from the clock; the registry
// updater is the only component allowed to consult "now".
func dataSourceTag(md meta.Metadata) string {
	year := md.Year
	if year == "" {
		year = "unknown"
	}
	tag := string(md.Region) + "_" + year
	if md.Month != "" {
		tag += "_" + md.Month
	}
	return tag
}

// setConst appends a constant string column, overwriting a column of the same
// name if the source data happened to carry one.
func setConst(f *frame.Frame, name, value string) {
	if f.Has(name) {
		values := make([]any, f.Rows())
		for i := range values {
			values[i] = value
		}
		_ = f.Replace(name, frame.TypeString, values)
		return
	}
	_ = f.AddConst(name, frame.TypeString, value)
}
