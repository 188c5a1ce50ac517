package main

import "tripdata/internal/pipeline"

// summaryJSON is the CLI's JSON rendering of a run summary; errors become
// strings so the document round-trips.
type summaryJSON struct {
	Processed  int              `json:"processed"`
	Failed     int              `json:"failed"`
	Skipped    int              `json:"skipped"`
	NewColumns int              `json:"new_columns"`
	Files      []fileResultJSON `json:"files"`
}

type fileResultJSON struct {
	Key         string `json:"key"`
	Destination string `json:"destination,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	Columns     int    `json:"columns,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	Error       string `json:"error,omitempty"`
}

func summaryView(sum pipeline.Summary) summaryJSON {
	out := summaryJSON{
		Processed:  sum.Processed,
		Failed:     sum.Failed,
		Skipped:    sum.Skipped,
		NewColumns: sum.NewColumns,
	}
	for _, r := range sum.Results {
		fr := fileResultJSON{
			Key:         r.Key,
			Destination: r.Destination,
			Rows:        r.Rows,
			Columns:     r.Columns,
			Skipped:     r.Skipped,
		}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		}
		out.Files = append(out.Files, fr)
	}
	return out
}
