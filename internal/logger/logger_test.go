package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewAttachesJobField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Job: "monthly", Writer: &buf})

	log.Info().Str("key", "202101-citibike-tripdata.csv").Msg("processing file")

	out := buf.String()
	for _, want := range []string{`"job":"monthly"`, `"key":"202101-citibike-tripdata.csv"`, "processing file"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Writer: &buf})

	log.Info().Msg("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info event logged at warn level: %q", buf.String())
	}
	log.Warn().Msg("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("warn event missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{" warning ", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
