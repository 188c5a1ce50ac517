package csv

import (
	"strings"
	"testing"
	"time"

	"tripdata/internal/frame"
)

func TestReadFrame_TypesAndHeaders(t *testing.T) {
	t.Parallel()

	in := "\uFEFFTrip Duration , Start Time,Start Station ID,start_lat,member_casual\n" +
		"680,2021-01-01 00:10:05,519,40.752,member\n" +
		"123,2021-01-01 08:00:00,3186,40.719,casual\n" +
		",2021-01-02 12:30:00,,40.801,member\n"

	res, err := ReadFrame(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	f := res.Frame
	if res.SkippedRows != 0 {
		t.Fatalf("SkippedRows = %d", res.SkippedRows)
	}
	if f.Rows() != 3 {
		t.Fatalf("rows = %d", f.Rows())
	}

	// BOM and padding are stripped, inner spelling preserved.
	wantNames := []string{"Trip Duration", "Start Time", "Start Station ID", "start_lat", "member_casual"}
	for i, n := range f.Names() {
		if n != wantNames[i] {
			t.Fatalf("header[%d] = %q, want %q", i, n, wantNames[i])
		}
	}

	cases := []struct {
		col  string
		typ  frame.DType
		val0 any
	}{
		{"Trip Duration", frame.TypeInt, int64(680)},
		{"Start Time", frame.TypeTime, time.Date(2021, 1, 1, 0, 10, 5, 0, time.UTC)},
		{"Start Station ID", frame.TypeInt, int64(519)},
		{"start_lat", frame.TypeFloat, 40.752},
		{"member_casual", frame.TypeString, "member"},
	}
	for _, c := range cases {
		col, ok := f.Column(c.col)
		if !ok {
			t.Fatalf("missing column %q", c.col)
		}
		if col.Type != c.typ {
			t.Fatalf("%s type = %v, want %v", c.col, col.Type, c.typ)
		}
		if col.Values[0] != c.val0 {
			t.Fatalf("%s[0] = %#v, want %#v", c.col, col.Values[0], c.val0)
		}
	}

	// Empty cells become nil, without disturbing the column type.
	dur, _ := f.Column("Trip Duration")
	if dur.Values[2] != nil {
		t.Fatalf("empty cell = %#v, want nil", dur.Values[2])
	}
}

// TestReadFrame_StrayValueKeepsColumnTextual: one non-numeric station id in an
// otherwise numeric column must keep the whole column as strings (the JC
// correction in the transform layer depends on this).
func TestReadFrame_StrayValueKeepsColumnTextual(t *testing.T) {
	t.Parallel()

	in := "start_station_id\n3186\nJC013\n3187\n"
	res, err := ReadFrame(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	col, _ := res.Frame.Column("start_station_id")
	if col.Type != frame.TypeString {
		t.Fatalf("type = %v, want string", col.Type)
	}
	if col.Values[1] != "JC013" {
		t.Fatalf("values = %#v", col.Values)
	}
}

func TestReadFrame_RaggedRows(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\n3\n4,5,6\n7,8\n"
	res, err := ReadFrame(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	// Narrow row padded, wide row skipped.
	if res.Frame.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", res.Frame.Rows())
	}
	if res.SkippedRows != 1 {
		t.Fatalf("SkippedRows = %d, want 1", res.SkippedRows)
	}
	b, _ := res.Frame.Column("b")
	if b.Values[1] != nil {
		t.Fatalf("padded cell = %#v, want nil", b.Values[1])
	}
}

func TestReadFrame_NoHeader(t *testing.T) {
	t.Parallel()

	_, err := ReadFrame(strings.NewReader(""), Options{})
	if err == nil {
		t.Fatal("expected header error for empty input")
	}
}

func TestReadFrame_RawStrings(t *testing.T) {
	t.Parallel()

	in := "a\n42\n"
	res, err := ReadFrame(strings.NewReader(in), Options{RawStrings: true})
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	col, _ := res.Frame.Column("a")
	if col.Type != frame.TypeString || col.Values[0] != "42" {
		t.Fatalf("col = %+v", col)
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in string
		ok bool
	}{
		{"2021-01-01 00:10:05", true},
		{"2013-07-01 00:00:00.000", true},
		{"2021-01-01", true},
		{"2021-01-01T10:00:00Z", true},
		{"not a time", false},
		{"680", false},
	}
	for _, c := range cases {
		if _, ok := ParseTime(c.in); ok != c.ok {
			t.Fatalf("ParseTime(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
	}
}
