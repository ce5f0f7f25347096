package domain

import (
	"testing"
	"time"
)

func tr(t *testing.T, start, end string) TimeRange {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse %q: %v", end, err)
	}
	return TimeRange{Start: s, End: e}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b TimeRange
		want bool
	}{
		{
			name: "partial overlap",
			a:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"),
			b:    tr(t, "2026-03-02T09:30:00Z", "2026-03-02T10:30:00Z"),
			want: true,
		},
		{
			name: "containment",
			a:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z"),
			b:    tr(t, "2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z"),
			want: true,
		},
		{
			name: "identical ranges",
			a:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"),
			b:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"),
			want: true,
		},
		{
			name: "back to back does not overlap",
			a:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"),
			b:    tr(t, "2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z"),
			want: false,
		},
		{
			name: "disjoint",
			a:    tr(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"),
			b:    tr(t, "2026-03-02T14:00:00Z", "2026-03-02T15:00:00Z"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v (overlap must be symmetric)", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	window := tr(t, "2026-03-02T09:00:00Z", "2026-03-02T17:00:00Z")

	if !window.Contains(tr(t, "2026-03-02T09:00:00Z", "2026-03-02T17:00:00Z")) {
		t.Fatalf("window must contain itself")
	}
	if !window.Contains(tr(t, "2026-03-02T10:00:00Z", "2026-03-02T10:30:00Z")) {
		t.Fatalf("window must contain an inner range")
	}
	if window.Contains(tr(t, "2026-03-02T16:45:00Z", "2026-03-02T17:15:00Z")) {
		t.Fatalf("range crossing the end must not be contained")
	}
	if window.Contains(tr(t, "2026-03-02T08:45:00Z", "2026-03-02T09:15:00Z")) {
		t.Fatalf("range crossing the start must not be contained")
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	in := time.Date(2026, time.March, 2, 1, 30, 0, 0, loc)

	got := DateOf(in)
	want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOf(%v) = %v, want %v", in, got, want)
	}
}
