package scheduling

import (
	"testing"
	"time"

	"agendaria/backend/internal/domain"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	return day.UTC()
}

func ruleAt(start, end string) domain.AvailabilityRule {
	return domain.AvailabilityRule{
		StartTime: start,
		EndTime:   end,
		Recurring: true,
	}
}

func busyAt(day time.Time, start, end string) domain.Booking {
	s, _ := domain.ParseTimeOfDay(start)
	e, _ := domain.ParseTimeOfDay(end)
	return domain.Booking{
		StartTime: day.Add(s),
		EndTime:   day.Add(e),
		Status:    domain.BookingConfirmed,
	}
}

func slotStarts(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Start.Format("15:04")
	}
	return out
}

func TestAvailableSlots(t *testing.T) {
	day := mustDay(t, "2026-03-02")

	tests := []struct {
		name     string
		rules    []domain.AvailabilityRule
		busy     []domain.Booking
		duration time.Duration
		want     []string
	}{
		{
			name:     "no rules yields empty",
			rules:    nil,
			duration: 30 * time.Minute,
			want:     []string{},
		},
		{
			name:     "one hour window fits two half hour slots",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "10:00")},
			duration: 30 * time.Minute,
			want:     []string{"09:00", "09:30"},
		},
		{
			name:     "duration longer than window yields nothing",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "10:00")},
			duration: 90 * time.Minute,
			want:     []string{},
		},
		{
			name:     "booking carves a gap and cursor resumes at its end",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "11:00")},
			busy:     []domain.Booking{busyAt(day, "09:30", "10:00")},
			duration: 30 * time.Minute,
			want:     []string{"09:00", "10:00", "10:30"},
		},
		{
			name:     "unaligned booking shifts the rest of the walk",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "11:00")},
			busy:     []domain.Booking{busyAt(day, "09:15", "09:45")},
			duration: 30 * time.Minute,
			want:     []string{"09:45", "10:15"},
		},
		{
			name:     "slot starting exactly at a booking end is free",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "10:00")},
			busy:     []domain.Booking{busyAt(day, "08:30", "09:00"), busyAt(day, "10:00", "10:30")},
			duration: 30 * time.Minute,
			want:     []string{"09:00", "09:30"},
		},
		{
			name: "windows from separate rules are walked independently",
			rules: []domain.AvailabilityRule{
				ruleAt("09:00", "10:00"),
				ruleAt("09:30", "10:30"),
			},
			duration: 30 * time.Minute,
			want:     []string{"09:00", "09:30", "09:30", "10:00"},
		},
		{
			name:     "fully booked window yields nothing",
			rules:    []domain.AvailabilityRule{ruleAt("09:00", "10:00")},
			busy:     []domain.Booking{busyAt(day, "08:00", "12:00")},
			duration: 30 * time.Minute,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slotStarts(availableSlots(tt.rules, tt.busy, day, tt.duration))
			if len(got) != len(tt.want) {
				t.Fatalf("got slots %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("slot %d: got %s, want %s (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestAvailableSlotsEndAlignment(t *testing.T) {
	day := mustDay(t, "2026-03-02")
	slots := availableSlots([]domain.AvailabilityRule{ruleAt("09:00", "10:15")}, nil, day, 30*time.Minute)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	last := slots[len(slots)-1]
	if got := last.End.Format("15:04"); got != "10:00" {
		t.Fatalf("last slot ends at %s, want 10:00", got)
	}
}
