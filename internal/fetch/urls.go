// Package fetch discovers and downloads source archives from the public
// tripdata bucket into the pipeline's object store.
package fetch

import (
	"fmt"

	"tripdata/internal/meta"
)

// BaseURL is the public HTTP endpoint the source archives are published on.
const BaseURL = "https://s3.amazonaws.com/tripdata/"

// GenerateURLs builds the archive URLs for the requested years, months, and
// regions.
//
// Rules:
//   - Monthly archives are named YYYYMM-citibike-tripdata.csv.zip, with a
//     JC- prefix for the Jersey City feed.
//   - Annual rollups (YYYY-citibike-tripdata.zip) exist only for the NYC
//     feed; with an empty months slice, NYC gets annual URLs and JC gets
//     nothing.
//
// Order is deterministic: years outermost, then months, then regions in the
// order given.
func GenerateURLs(years []int, months []int, regions []meta.Region) []string {
	var urls []string
	for _, y := range years {
		if len(months) == 0 {
			for _, r := range regions {
				if r == meta.RegionNYC {
					urls = append(urls, fmt.Sprintf("%s%d-citibike-tripdata.zip", BaseURL, y))
				}
			}
			continue
		}
		for _, m := range months {
			for _, r := range regions {
				prefix := ""
				if r == meta.RegionJC {
					prefix = "JC-"
				}
				urls = append(urls, fmt.Sprintf("%s%s%d%02d-citibike-tripdata.csv.zip", BaseURL, prefix, y, m))
			}
		}
	}
	return urls
}
