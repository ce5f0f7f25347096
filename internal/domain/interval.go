package domain

import "time"

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. A range that
// ends exactly when the other starts does not overlap, so back-to-back
// bookings are legal.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Contains reports whether o lies entirely inside r.
func (r TimeRange) Contains(o TimeRange) bool {
	return !o.Start.Before(r.Start) && !o.End.After(r.End)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
