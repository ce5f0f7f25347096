package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "09:00", want: 9 * time.Hour},
		{in: "09:30", want: 9*time.Hour + 30*time.Minute},
		{in: "17:00:30", want: 17*time.Hour + 30*time.Second},
		{in: "00:00", want: 0},
		{in: "25:00", wantErr: true},
		{in: "9am", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRuleValidate(t *testing.T) {
	valid := AvailabilityRule{
		DayOfWeek: 1,
		StartTime: "09:00",
		EndTime:   "17:00",
		Recurring: true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	t.Run("inverted window", func(t *testing.T) {
		r := valid
		r.StartTime, r.EndTime = "17:00", "09:00"
		if err := r.Validate(); err == nil {
			t.Fatalf("inverted window accepted")
		}
	})

	t.Run("day of week out of range", func(t *testing.T) {
		r := valid
		r.DayOfWeek = 7
		if err := r.Validate(); err == nil {
			t.Fatalf("day_of_week 7 accepted")
		}
	})

	t.Run("non-recurring requires both dates", func(t *testing.T) {
		r := valid
		r.Recurring = false
		if err := r.Validate(); err == nil {
			t.Fatalf("non-recurring rule without dates accepted")
		}
		d := date(2026, time.March, 2)
		r.EffectiveDate, r.ExpirationDate = &d, &d
		if err := r.Validate(); err != nil {
			t.Fatalf("single-day rule rejected: %v", err)
		}
	})

	t.Run("expiration before effective", func(t *testing.T) {
		r := valid
		early := date(2026, time.March, 1)
		late := date(2026, time.March, 31)
		r.EffectiveDate, r.ExpirationDate = &late, &early
		if err := r.Validate(); err == nil {
			t.Fatalf("inverted date window accepted")
		}
	})
}

func TestRuleAppliesOn(t *testing.T) {
	mar1 := date(2026, time.March, 1)
	mar31 := date(2026, time.March, 31)

	t.Run("recurring without bounds applies everywhere", func(t *testing.T) {
		r := AvailabilityRule{Recurring: true}
		if !r.AppliesOn(date(2026, time.March, 2)) {
			t.Fatalf("unbounded recurring rule did not apply")
		}
	})

	t.Run("recurring respects bounds when set", func(t *testing.T) {
		r := AvailabilityRule{Recurring: true, EffectiveDate: &mar1, ExpirationDate: &mar31}
		if !r.AppliesOn(date(2026, time.March, 15)) {
			t.Fatalf("rule did not apply inside its window")
		}
		if r.AppliesOn(date(2026, time.February, 28)) {
			t.Fatalf("rule applied before effective date")
		}
		if r.AppliesOn(date(2026, time.April, 1)) {
			t.Fatalf("rule applied after expiration date")
		}
		if !r.AppliesOn(mar1) || !r.AppliesOn(mar31) {
			t.Fatalf("bounds must be inclusive")
		}
	})

	t.Run("non-recurring applies only inside its window", func(t *testing.T) {
		r := AvailabilityRule{EffectiveDate: &mar1, ExpirationDate: &mar31}
		if !r.AppliesOn(date(2026, time.March, 15)) {
			t.Fatalf("rule did not apply inside its window")
		}
		if r.AppliesOn(date(2026, time.April, 1)) {
			t.Fatalf("rule applied outside its window")
		}
	})

	t.Run("non-recurring with missing bound never applies", func(t *testing.T) {
		r := AvailabilityRule{EffectiveDate: &mar1}
		if r.AppliesOn(date(2026, time.March, 15)) {
			t.Fatalf("half-bounded non-recurring rule applied")
		}
	})
}

func TestRuleCoversDates(t *testing.T) {
	mar1 := date(2026, time.March, 1)
	mar31 := date(2026, time.March, 31)
	r := AvailabilityRule{Recurring: true, EffectiveDate: &mar1, ExpirationDate: &mar31}

	if !r.CoversDates(mar1, mar31) {
		t.Fatalf("rule must cover its own window")
	}
	// A span crossing the expiration date is not covered, even if it starts
	// inside the window.
	if r.CoversDates(mar31, date(2026, time.April, 1)) {
		t.Fatalf("span crossing expiration was covered")
	}
	if r.CoversDates(date(2026, time.February, 28), mar1) {
		t.Fatalf("span starting before effective was covered")
	}
}

func TestRuleWindowOn(t *testing.T) {
	r := AvailabilityRule{StartTime: "09:00", EndTime: "17:30", Recurring: true}
	day := date(2026, time.March, 2)

	window, err := r.WindowOn(day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !window.Start.Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("got start %v", window.Start)
	}
	if !window.End.Equal(day.Add(17*time.Hour + 30*time.Minute)) {
		t.Fatalf("got end %v", window.End)
	}

	r.StartTime = "nope"
	if _, err := r.WindowOn(day); err == nil {
		t.Fatalf("malformed start time accepted")
	}
}

func TestOverlapsTimeOfDay(t *testing.T) {
	a := AvailabilityRule{StartTime: "09:00", EndTime: "12:00"}
	b := AvailabilityRule{StartTime: "11:00", EndTime: "14:00"}
	c := AvailabilityRule{StartTime: "12:00", EndTime: "14:00"}

	if !a.OverlapsTimeOfDay(b) {
		t.Fatalf("intersecting windows reported disjoint")
	}
	if a.OverlapsTimeOfDay(c) {
		t.Fatalf("adjacent windows reported overlapping")
	}
}

func TestDateWindowsIntersect(t *testing.T) {
	jan1 := date(2026, time.January, 1)
	jan31 := date(2026, time.January, 31)
	feb1 := date(2026, time.February, 1)

	bounded := AvailabilityRule{EffectiveDate: &jan1, ExpirationDate: &jan31}
	later := AvailabilityRule{EffectiveDate: &feb1}
	open := AvailabilityRule{}

	if bounded.DateWindowsIntersect(later) {
		t.Fatalf("disjoint windows reported intersecting")
	}
	if !bounded.DateWindowsIntersect(open) {
		t.Fatalf("open window must intersect everything")
	}
	if !open.DateWindowsIntersect(open) {
		t.Fatalf("two open windows must intersect")
	}
}
