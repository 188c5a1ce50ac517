// Package meta extracts period and region metadata from Citibike data-file
// identifiers (object keys or bare filenames).
//
// Extraction is pure string work: no clock access, no defaults to "now".
// Fields that cannot be determined are left empty and the caller decides what
// an absent year means (the schema registry substitutes the processing year;
// nothing else should).
package meta

import (
	"path"
	"regexp"
	"strings"
)

// Region identifies the bikeshare system a file belongs to.
type Region string

const (
	RegionNYC Region = "nyc"
	RegionJC  Region = "jc"
)

// Grain is the temporal resolution of a data file.
type Grain string

const (
	GrainAnnual  Grain = "annual"
	GrainMonthly Grain = "monthly"
	GrainUnknown Grain = "unknown"
)

// jcMarker is the literal prefix Lyft uses for Jersey City archives,
// e.g. JC-202101-citibike-tripdata.csv.zip.
const jcMarker = "JC-"

// fileSuffix is the fixed literal that follows the period in well-formed
// identifiers, e.g. 202101-citibike-tripdata.csv.zip.
const fileSuffix = "-citibike-tripdata"

// Metadata describes one data file. Year and Month are kept as the exact
// digit strings found in the identifier ("2021", "01") so that source keys
// and destination paths round-trip without reformatting. Empty means absent.
type Metadata struct {
	Year   string
	Month  string
	Region Region
	Grain  Grain
}

// SourceKey builds the registry source key for this file: region_year or
// region_year_month. The fallbackYear is used when the identifier carried no
// year; pass the processing year (see schema.Update), never format time here.
func (m Metadata) SourceKey(fallbackYear string) string {
	year := m.Year
	if year == "" {
		year = fallbackYear
	}
	key := string(m.Region) + "_" + year
	if m.Month != "" {
		key += "_" + m.Month
	}
	return key
}

var (
	annualRe  = regexp.MustCompile(`^(20\d{2})` + fileSuffix)
	monthlyRe = regexp.MustCompile(`^(20\d{2})(\d{2})` + fileSuffix)
	yearRe    = regexp.MustCompile(`(20\d{2})`)
	yearMonRe = regexp.MustCompile(`(20\d{2})(\d{2})`)
)

// Extract parses an identifier into Metadata. It never fails; unparseable
// identifiers come back with empty Year/Month and GrainUnknown.
//
// Matching is ordered, first match wins:
//  1. A JC- marker anywhere in the base name selects RegionJC and is stripped
//     before period parsing.
//  2. 2021-citibike-tripdata...            -> annual
//  3. 202101-citibike-tripdata...          -> monthly
//  4. Otherwise any 20xx year in the name; a 20xxMM run upgrades to monthly.
func Extract(identifier string) Metadata {
	md := Metadata{Region: RegionNYC, Grain: GrainUnknown}

	base := path.Base(identifier)
	if strings.Contains(base, jcMarker) {
		md.Region = RegionJC
		base = strings.ReplaceAll(base, jcMarker, "")
	}

	if m := annualRe.FindStringSubmatch(base); m != nil {
		md.Year = m[1]
		md.Grain = GrainAnnual
		return md
	}
	if m := monthlyRe.FindStringSubmatch(base); m != nil {
		md.Year = m[1]
		md.Month = m[2]
		md.Grain = GrainMonthly
		return md
	}

	// Loose fallback for historical one-off names.
	if m := yearRe.FindStringSubmatch(base); m != nil {
		md.Year = m[1]
		if ym := yearMonRe.FindStringSubmatch(base); ym != nil {
			md.Month = ym[2]
			md.Grain = GrainMonthly
		} else {
			md.Grain = GrainAnnual
		}
	}
	return md
}
