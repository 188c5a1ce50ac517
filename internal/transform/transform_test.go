package transform

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"tripdata/internal/frame"
	"tripdata/internal/meta"
	"tripdata/internal/schema"
)

func mustAdd(t *testing.T, f *frame.Frame, name string, typ frame.DType, values []any) {
	t.Helper()
	if err := f.AddColumn(name, typ, values); err != nil {
		t.Fatalf("AddColumn(%s): %v", name, err)
	}
}

func outcomeFor(res Result, column, kind string) (CoerceOutcome, bool) {
	for _, o := range res.Outcomes {
		if o.Column == column && o.Kind == kind {
			return o, true
		}
	}
	return CoerceOutcome{}, false
}

// TestApply_EndToEndNYC mirrors the canonical example: a two-column NYC file
// comes out with exactly the canonical names plus region and data_source.
func TestApply_EndToEndNYC(t *testing.T) {
	t.Parallel()

	f := frame.New(0)
	mustAdd(t, f, "Start Station ID", frame.TypeInt, []any{int64(519), int64(3186)})
	mustAdd(t, f, "tripduration", frame.TypeInt, []any{int64(680), int64(123)})

	md := meta.Metadata{Year: "2021", Region: meta.RegionNYC, Grain: meta.GrainAnnual}
	res, err := Apply(f, schema.NewRegistry(), md)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"start_station_id", "trip_duration", "region", "data_source"}
	if !reflect.DeepEqual(res.Frame.Names(), want) {
		t.Fatalf("columns = %v, want %v", res.Frame.Names(), want)
	}

	region, _ := res.Frame.Column("region")
	if region.Values[0] != "new_york" || region.Values[1] != "new_york" {
		t.Fatalf("region values = %v", region.Values)
	}
	source, _ := res.Frame.Column("data_source")
	if source.Values[0] != "nyc_2021" {
		t.Fatalf("data_source = %v", source.Values[0])
	}
}

// TestApply_RegistryMappingPreferred: a recorded mapping wins over the static
// normalizer for spellings the registry has already seen.
func TestApply_RegistryMappingPreferred(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	reg.Mappings["legacy duration"] = "trip_duration"

	f := frame.New(0)
	mustAdd(t, f, "Legacy Duration", frame.TypeInt, []any{int64(1)})

	res, err := Apply(f, reg, meta.Metadata{Year: "2015", Region: meta.RegionNYC})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.Frame.Has("trip_duration") {
		t.Fatalf("columns = %v", res.Frame.Names())
	}
}

// TestApply_RenameCollision: two raw spellings of the same semantic column in
// one file must fail the file, not drop data.
func TestApply_RenameCollision(t *testing.T) {
	t.Parallel()

	f := frame.New(0)
	mustAdd(t, f, "tripduration", frame.TypeInt, []any{int64(1)})
	mustAdd(t, f, "Trip Duration", frame.TypeInt, []any{int64(2)})

	_, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2020", Region: meta.RegionNYC})
	var collision *RenameCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("err = %v, want RenameCollisionError", err)
	}
	if collision.Canonical != "trip_duration" {
		t.Fatalf("collision = %+v", collision)
	}
}

func TestApply_JCStationIDs(t *testing.T) {
	t.Parallel()

	t.Run("numeric_after_strip", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "start_station_id", frame.TypeString, []any{"JC-013", "JC102", "3186"})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2019", Region: meta.RegionJC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		col, _ := res.Frame.Column("start_station_id")
		if col.Type != frame.TypeInt {
			t.Fatalf("type = %v, want int64", col.Type)
		}
		if col.Values[0] != int64(13) || col.Values[1] != int64(102) || col.Values[2] != int64(3186) {
			t.Fatalf("values = %v", col.Values)
		}
		o, ok := outcomeFor(res, "start_station_id", "station_id_numeric")
		if !ok || !o.Applied {
			t.Fatalf("outcome = %+v, ok=%v", o, ok)
		}
	})

	t.Run("non_numeric_keeps_stripped_text", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "end_station_id", frame.TypeString, []any{"JC-013", "Liberty Light Rail"})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2019", Region: meta.RegionJC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		col, _ := res.Frame.Column("end_station_id")
		if col.Type != frame.TypeString {
			t.Fatalf("type = %v, want string fallback", col.Type)
		}
		if col.Values[0] != "013" || col.Values[1] != "Liberty Light Rail" {
			t.Fatalf("values = %v", col.Values)
		}
		o, ok := outcomeFor(res, "end_station_id", "station_id_numeric")
		if !ok || o.Applied {
			t.Fatalf("expected fallback outcome, got %+v, ok=%v", o, ok)
		}
	})

	t.Run("numeric_columns_left_alone", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "start_station_id", frame.TypeInt, []any{int64(13)})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2021", Region: meta.RegionJC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if _, ok := outcomeFor(res, "start_station_id", "station_id_numeric"); ok {
			t.Fatal("no outcome expected for already-numeric column")
		}
	})
}

// TestApply_JCStationNamePrefixIdempotent: transforming twice must not
// double-prefix station names.
func TestApply_JCStationNamePrefixIdempotent(t *testing.T) {
	t.Parallel()

	md := meta.Metadata{Year: "2019", Region: meta.RegionJC}
	reg := schema.NewRegistry()

	f := frame.New(0)
	mustAdd(t, f, "start_station_name", frame.TypeString, []any{"Grove St PATH", "JC - Exchange Pl", nil})

	res, err := Apply(f, reg, md)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	first, _ := res.Frame.Column("start_station_name")
	want := []any{"JC - Grove St PATH", "JC - Exchange Pl", nil}
	if !reflect.DeepEqual(first.Values, want) {
		t.Fatalf("first pass = %v, want %v", first.Values, want)
	}

	// Second pass over the already-canonical frame.
	res2, err := Apply(res.Frame, reg, md)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	second, _ := res2.Frame.Column("start_station_name")
	if !reflect.DeepEqual(second.Values, want) {
		t.Fatalf("second pass = %v, want %v", second.Values, want)
	}
}

func TestApply_TemporalCoercion(t *testing.T) {
	t.Parallel()

	t.Run("clean_column_upgrades", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "starttime", frame.TypeString, []any{"2021-01-01 00:10:05", nil})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2021", Region: meta.RegionNYC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		col, _ := res.Frame.Column("start_time")
		if col.Type != frame.TypeTime {
			t.Fatalf("type = %v", col.Type)
		}
		if got := col.Values[0].(time.Time); got != time.Date(2021, 1, 1, 0, 10, 5, 0, time.UTC) {
			t.Fatalf("value = %v", got)
		}
		o, _ := outcomeFor(res, "start_time", "timestamp")
		if !o.Applied {
			t.Fatalf("outcome = %+v", o)
		}
	})

	t.Run("dirty_column_left_unmodified", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "stoptime", frame.TypeString, []any{"2021-01-01 00:10:05", "garbage"})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2021", Region: meta.RegionNYC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		col, _ := res.Frame.Column("stop_time")
		if col.Type != frame.TypeString || col.Values[1] != "garbage" {
			t.Fatalf("col = %+v", col)
		}
		o, ok := outcomeFor(res, "stop_time", "timestamp")
		if !ok || o.Applied {
			t.Fatalf("expected fallback outcome, got %+v ok=%v", o, ok)
		}
	})

	t.Run("non_temporal_ignored", func(t *testing.T) {
		t.Parallel()
		f := frame.New(0)
		mustAdd(t, f, "gender", frame.TypeString, []any{"1", "2"})

		res, err := Apply(f, schema.NewRegistry(), meta.Metadata{Year: "2018", Region: meta.RegionNYC})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if _, ok := outcomeFor(res, "gender", "timestamp"); ok {
			t.Fatal("gender should not be coerced")
		}
	})
}

func TestDataSourceTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		md   meta.Metadata
		want string
	}{
		{meta.Metadata{Year: "2021", Month: "01", Region: meta.RegionJC}, "jc_2021_01"},
		{meta.Metadata{Year: "2021", Region: meta.RegionNYC}, "nyc_2021"},
		{meta.Metadata{Region: meta.RegionNYC}, "nyc_unknown"},
	}
	for _, c := range cases {
		if got := dataSourceTag(c.md); got != c.want {
			t.Fatalf("dataSourceTag(%+v) = %q, want %q", c.md, got, c.want)
		}
	}
}
