package review

import (
	"testing"
	"time"
)

func TestParseDateTimeLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"3/14/2024 2:30:15 PM", "2024-03-14T14:30:15Z"},
		{"03/14/2024 2:30 PM", "2024-03-14T14:30:00Z"},
		{"3/14/2024 14:30:15", "2024-03-14T14:30:15Z"},
		{"2024-03-14 14:30", "2024-03-14T14:30:00Z"},
		{"2024-3-4 09:05:00", "2024-03-04T09:05:00Z"},
		{"2024-03-14T14:30:00Z", "2024-03-14T14:30:00Z"},
		{"2024-03-14T14:30:00", "2024-03-14T14:30:00Z"},
		{"2024-03-14", "2024-03-14T00:00:00Z"},
		{"  3/14/2024 2:30 PM  ", "2024-03-14T14:30:00Z"},
	}

	for _, tc := range cases {
		got, ok := ParseDateTime(tc.raw)
		if !ok {
			t.Fatalf("ParseDateTime(%q) reported failure", tc.raw)
		}
		if s := got.UTC().Format(time.RFC3339); s != tc.want {
			t.Fatalf("ParseDateTime(%q) = %s, want %s", tc.raw, s, tc.want)
		}
	}
}

func TestParseDateTimeEquivalentRenderings(t *testing.T) {
	a, ok := ParseDateTime("03/14/2024 2:30 PM")
	if !ok {
		t.Fatal("padded US form failed to parse")
	}
	b, ok := ParseDateTime("2024-03-14 14:30")
	if !ok {
		t.Fatal("ISO-ish form failed to parse")
	}
	if !a.Equal(b) {
		t.Fatalf("renderings disagree: %v vs %v", a, b)
	}
}

func TestParseDateTimeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a date", "14/3/2024 25:99", "–"} {
		if got, ok := ParseDateTime(raw); ok {
			t.Fatalf("ParseDateTime(%q) unexpectedly parsed to %v", raw, got)
		}
	}
}
