// Package schema maintains the canonical column schema for Citibike trip
// data: a static normalizer that maps raw column spellings to canonical
// names, and an accumulating registry that records every column ever
// observed across years, months, and regions.
package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tripdata/internal/meta"
)

// aliases maps normalized raw tokens to the canonical name for their semantic
// concept. The table is static: normalization must be deterministic across
// runs, so nothing is ever learned into it at runtime.
//
// Both regions currently share this table; resolve it through regionAliases
// so a Jersey City divergence stays a local change.
var aliases = map[string]string{
	// ride duration
	"tripduration": "trip_duration",

	// timestamps (pre-2021 and post-2021 feed generations)
	"starttime":  "start_time",
	"stoptime":   "stop_time",
	"started_at": "start_time",
	"ended_at":   "stop_time",

	// station identifiers and names
	"start_station_id":   "start_station_id",
	"end_station_id":     "end_station_id",
	"start_station_name": "start_station_name",
	"end_station_name":   "end_station_name",
	"station_id":         "start_station_id",
	"name":               "start_station_name",

	// coordinates
	"start_lat":               "start_latitude",
	"start_lng":               "start_longitude",
	"end_lat":                 "end_latitude",
	"end_lng":                 "end_longitude",
	"start_station_latitude":  "start_latitude",
	"start_station_longitude": "start_longitude",
	"end_station_latitude":    "end_latitude",
	"end_station_longitude":   "end_longitude",

	// rider and equipment attributes
	"bikeid":        "bike_id",
	"usertype":      "user_type",
	"member_casual": "member_type",
	"rideable_type": "rideable_type",
	"birth_year":    "birth_year",
	"gender":        "gender",
}

// regionAliases returns the alias table for a region. Today every region
// resolves to the shared table; the region parameter exists so per-region
// overrides can be layered in without touching call sites.
func regionAliases(_ meta.Region) map[string]string {
	return aliases
}

// Normalize maps a raw column name to its canonical name.
//
// The raw name is tokenized first (lowercase, trimmed, separator runs folded
// to a single underscore, diacritics stripped), then looked up in the region's
// alias table. Unknown tokens are returned as-is: Normalize always produces a
// usable name and never fails.
func Normalize(raw string, region meta.Region) string {
	token := Tokenize(raw)
	if canonical, ok := regionAliases(region)[token]; ok {
		return canonical
	}
	return token
}

// foldMarks decomposes, removes nonspacing marks (accents), and recomposes,
// reducing accented letters to their ASCII base.
var foldMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Tokenize reduces a raw header cell to the lookup token used by Normalize
// and by the registry's column keys: lowercased, trimmed, accents folded,
// and runs of spaces, hyphens, and dots collapsed to single underscores.
func Tokenize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	ascii, _, err := transform.String(foldMarks, s)
	if err == nil {
		s = ascii
	}

	var b strings.Builder
	b.Grow(len(s))
	prevSep := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '-' || r == '.' {
			if !prevSep && b.Len() > 0 {
				b.WriteByte('_')
				prevSep = true
			}
			continue
		}
		b.WriteRune(r)
		prevSep = false
	}
	return strings.TrimSuffix(b.String(), "_")
}
