package app

import (
	"testing"
)

func TestParseSeedRow(t *testing.T) {
	stat, err := parseSeedRow([]string{"sensor.house", "2024-06-03T08:00:00Z", "1.25"}, "sum")
	if err != nil {
		t.Fatalf("parseSeedRow returned error: %v", err)
	}
	if stat.EntityID != "sensor.house" {
		t.Fatalf("entity = %q", stat.EntityID)
	}
	if stat.Kind != "sum" {
		t.Fatalf("kind = %q", stat.Kind)
	}
	if got := stat.Bucket.Format("2006-01-02T15:04:05Z07:00"); got != "2024-06-03T08:00:00Z" {
		t.Fatalf("bucket = %s", got)
	}
	if stat.Value.String() != "1.25" {
		t.Fatalf("value = %s", stat.Value)
	}
}

func TestParseSeedRowKindColumnWins(t *testing.T) {
	stat, err := parseSeedRow([]string{"sensor.power", "2024-06-03T08:00:00Z", "420.5", "mean"}, "sum")
	if err != nil {
		t.Fatalf("parseSeedRow returned error: %v", err)
	}
	if stat.Kind != "mean" {
		t.Fatalf("kind = %q", stat.Kind)
	}
}

func TestParseSeedRowRejectsBadRows(t *testing.T) {
	cases := map[string][]string{
		"too few columns": {"sensor.house", "2024-06-03T08:00:00Z"},
		"bad timestamp":   {"sensor.house", "yesterday", "1.0"},
		"bad value":       {"sensor.house", "2024-06-03T08:00:00Z", "lots"},
		"bad kind":        {"sensor.house", "2024-06-03T08:00:00Z", "1.0", "median"},
		"empty entity":    {" ", "2024-06-03T08:00:00Z", "1.0"},
	}

	for name, record := range cases {
		if _, err := parseSeedRow(record, "sum"); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDownsamplePoints(t *testing.T) {
	points := make([]point, 100)
	got := downsamplePoints(points, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 points, got %d", len(got))
	}

	if got := downsamplePoints(points, 200); len(got) != 100 {
		t.Fatalf("short input must pass through, got %d", len(got))
	}
}
