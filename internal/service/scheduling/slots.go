package scheduling

import (
	"time"

	"agendaria/backend/internal/domain"
)

// Slot is a bookable window of exactly one service duration.
type Slot struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// availableSlots walks each availability window for the day and emits
// duration-sized slots. The cursor advances by the service duration, except
// when a candidate collides with an active booking, where it jumps to that
// booking's end. Windows from different rules are walked independently and
// their slots are not merged.
func availableSlots(rules []domain.AvailabilityRule, busy []domain.Booking, day time.Time, duration time.Duration) []Slot {
	slots := []Slot{}
	if duration <= 0 {
		return slots
	}

	for _, rule := range rules {
		window, err := rule.WindowOn(day)
		if err != nil {
			continue
		}

		cursor := window.Start
		for !cursor.Add(duration).After(window.End) {
			candidate := domain.TimeRange{Start: cursor, End: cursor.Add(duration)}

			conflict, found := firstConflict(candidate, busy)
			if !found {
				slots = append(slots, Slot{Start: candidate.Start, End: candidate.End})
				cursor = candidate.End
				continue
			}
			// The conflicting booking ends strictly after cursor, so this
			// always moves forward.
			cursor = conflict.EndTime
		}
	}
	return slots
}

func firstConflict(candidate domain.TimeRange, busy []domain.Booking) (domain.Booking, bool) {
	for _, b := range busy {
		if candidate.Overlaps(b.Range()) {
			return b, true
		}
	}
	return domain.Booking{}, false
}
