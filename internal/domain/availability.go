package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AvailabilityRule is a weekly working-hour window for a provider. Recurring
// rules repeat every week, optionally bounded by effective/expiration dates;
// non-recurring rules apply only to dates inside [EffectiveDate,
// ExpirationDate], with both bounds required (equal bounds for a single day).
//
// Rules for the same provider and weekday are evaluated independently; the
// store does not merge or deduplicate overlapping rules.
type AvailabilityRule struct {
	bun.BaseModel `bun:"table:availability_rules"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID uuid.UUID `bun:"provider_id,notnull,type:uuid"`
	// DayOfWeek uses time.Weekday numbering: 0 (Sunday) through 6 (Saturday).
	DayOfWeek int    `bun:"day_of_week,notnull"`
	StartTime string `bun:"start_time,notnull,type:time"`
	EndTime   string `bun:"end_time,notnull,type:time"`
	Recurring bool   `bun:"is_recurring,notnull"`

	EffectiveDate  *time.Time `bun:"effective_date,type:date"`
	ExpirationDate *time.Time `bun:"expiration_date,type:date"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (r *AvailabilityRule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			r.ID = id
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, nil
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// Validate checks the rule's structural invariants.
func (r AvailabilityRule) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("end_time must be after start_time")
	}
	if r.EffectiveDate != nil && r.ExpirationDate != nil &&
		DateOf(*r.ExpirationDate).Before(DateOf(*r.EffectiveDate)) {
		return fmt.Errorf("expiration_date must not be before effective_date")
	}
	if !r.Recurring && (r.EffectiveDate == nil || r.ExpirationDate == nil) {
		return fmt.Errorf("non-recurring rules require effective_date and expiration_date")
	}
	return nil
}

// CoversDates reports whether the rule's validity window covers the calendar
// span [startDay, endDay]. Recurring rules check each bound only when set;
// non-recurring rules require the whole span inside their bounded window.
// Weekday matching is the caller's concern.
func (r AvailabilityRule) CoversDates(startDay, endDay time.Time) bool {
	startDay = DateOf(startDay)
	endDay = DateOf(endDay)
	if r.Recurring {
		if r.EffectiveDate != nil && startDay.Before(DateOf(*r.EffectiveDate)) {
			return false
		}
		if r.ExpirationDate != nil && endDay.After(DateOf(*r.ExpirationDate)) {
			return false
		}
		return true
	}
	if r.EffectiveDate == nil || r.ExpirationDate == nil {
		return false
	}
	return !startDay.Before(DateOf(*r.EffectiveDate)) && !endDay.After(DateOf(*r.ExpirationDate))
}

// AppliesOn reports whether the rule's validity window covers a single date.
func (r AvailabilityRule) AppliesOn(date time.Time) bool {
	return r.CoversDates(date, date)
}

// WindowOn materializes the rule's time-of-day window on a concrete date.
func (r AvailabilityRule) WindowOn(date time.Time) (TimeRange, error) {
	day := DateOf(date)
	start, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return TimeRange{}, err
	}
	end, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: day.Add(start), End: day.Add(end)}, nil
}

// OverlapsTimeOfDay reports whether two rules' daily windows intersect,
// ignoring dates. Used by the best-effort overlap check at rule creation.
func (r AvailabilityRule) OverlapsTimeOfDay(o AvailabilityRule) bool {
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	rw, err := r.WindowOn(base)
	if err != nil {
		return false
	}
	ow, err := o.WindowOn(base)
	if err != nil {
		return false
	}
	return rw.Overlaps(ow)
}

// DateWindowsIntersect reports whether the validity windows of two rules can
// cover a common date. Unbounded sides are treated as open-ended.
func (r AvailabilityRule) DateWindowsIntersect(o AvailabilityRule) bool {
	if r.EffectiveDate != nil && o.ExpirationDate != nil &&
		DateOf(*r.EffectiveDate).After(DateOf(*o.ExpirationDate)) {
		return false
	}
	if o.EffectiveDate != nil && r.ExpirationDate != nil &&
		DateOf(*o.EffectiveDate).After(DateOf(*r.ExpirationDate)) {
		return false
	}
	return true
}
