package schema

import (
	"strings"
	"time"

	"tripdata/internal/frame"
	"tripdata/internal/meta"
)

// ColumnInfo records the metadata frozen for a raw column name when it was
// first observed. Later observations of the same raw name never change it
// (first-seen wins; see Update).
type ColumnInfo struct {
	// DataType is the dtype observed in the first dataset that carried the
	// column (frame.DType values: string, int64, float64, bool, timestamp).
	DataType string `json:"data_type"`

	// FirstSeenYear / FirstSeenMonth / FirstSeenRegion locate the source that
	// introduced the column. Month is empty for annual files.
	FirstSeenYear   string      `json:"first_seen_year"`
	FirstSeenMonth  string      `json:"first_seen_month,omitempty"`
	FirstSeenRegion meta.Region `json:"first_seen_region"`

	// NormalizedName is the canonical name the raw name maps to.
	NormalizedName string `json:"normalized_name"`
}

// SourceInfo records which columns a single data source contributed, in
// first-seen order.
type SourceInfo struct {
	Year    string      `json:"year"`
	Month   string      `json:"month,omitempty"`
	Region  meta.Region `json:"region"`
	Columns []string    `json:"columns"`
}

// Registry is the accumulating column schema. It is append-only: keys are
// added as new raw names and sources appear and are never removed or
// rewritten. The zero value is not usable; call NewRegistry.
//
// Columns is keyed by the raw lowercase column name as observed, not by the
// canonical name. Two raw spellings mapping to the same canonical name are
// two Columns entries but share one value in Mappings.
type Registry struct {
	Columns     map[string]ColumnInfo  `json:"columns"`
	Mappings    map[string]string      `json:"column_mappings"`
	Sources     map[string]*SourceInfo `json:"sources"`
	LastUpdated time.Time              `json:"last_updated"`
}

// NewRegistry returns an empty, usable registry.
func NewRegistry() *Registry {
	return &Registry{
		Columns:  map[string]ColumnInfo{},
		Mappings: map[string]string{},
		Sources:  map[string]*SourceInfo{},
	}
}

// ensureMaps repairs nil maps after JSON decoding of a sparse or hand-edited
// registry document.
func (r *Registry) ensureMaps() {
	if r.Columns == nil {
		r.Columns = map[string]ColumnInfo{}
	}
	if r.Mappings == nil {
		r.Mappings = map[string]string{}
	}
	if r.Sources == nil {
		r.Sources = map[string]*SourceInfo{}
	}
}

// KeyOf reduces a raw column name to the registry key form: lowercased and
// trimmed, with the original inner spelling preserved.
func KeyOf(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// CanonicalFor resolves a raw column name through the recorded mappings,
// falling back to Normalize for names the registry has never seen. The
// fallback keeps transforms working on historical quirks even when Update was
// not called for the exact spelling first.
func (r *Registry) CanonicalFor(raw string, region meta.Region) string {
	if canonical, ok := r.Mappings[KeyOf(raw)]; ok {
		return canonical
	}
	return Normalize(raw, region)
}

// Update folds one dataset's columns into the registry.
//
// For the source identified by md it appends any column not yet recorded for
// that source (first-seen order, no duplicates). For every raw name not yet
// in Columns it freezes the observed dtype, the source coordinates, and the
// canonical name, and records the forward mapping. Raw names already known
// are left untouched even when the new dataset disagrees on type: the
// first-seen type wins by policy, later conflicts are deliberately ignored.
//
// now supplies both LastUpdated and the year fallback for files whose
// identifier carried no year. This is the only place a clock value enters the
// core; pass time.Now() in production and a fixed value in tests.
func Update(r *Registry, columns []frame.Column, md meta.Metadata, now time.Time) {
	r.ensureMaps()

	year := md.Year
	if year == "" {
		year = now.Format("2006")
	}
	sourceKey := md.SourceKey(year)

	src, ok := r.Sources[sourceKey]
	if !ok {
		src = &SourceInfo{Year: year, Month: md.Month, Region: md.Region}
		r.Sources[sourceKey] = src
	}

	for _, col := range columns {
		key := KeyOf(col.Name)

		if !containsString(src.Columns, key) {
			src.Columns = append(src.Columns, key)
		}

		if _, known := r.Columns[key]; known {
			continue
		}
		canonical := Normalize(key, md.Region)
		r.Columns[key] = ColumnInfo{
			DataType:        string(col.Type),
			FirstSeenYear:   year,
			FirstSeenMonth:  md.Month,
			FirstSeenRegion: md.Region,
			NormalizedName:  canonical,
		}
		r.Mappings[key] = canonical
	}

	r.LastUpdated = now
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
