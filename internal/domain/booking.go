package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
	BookingCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCanceled, BookingCompleted:
		return true
	}
	return false
}

// allowedTransitions is the booking state machine. Canceled and completed are
// terminal.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCanceled},
	BookingConfirmed: {BookingCompleted, BookingCanceled},
	BookingCanceled:  {},
	BookingCompleted: {},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Occupies reports whether a booking in this status blocks the provider's
// time. Canceled and completed bookings never block new slots.
func (s BookingStatus) Occupies() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         uuid.UUID     `bun:"id,pk,type:uuid"`
	ClientID   uuid.UUID     `bun:"client_id,notnull,type:uuid"`
	ProviderID uuid.UUID     `bun:"provider_id,notnull,type:uuid"`
	ServiceID  uuid.UUID     `bun:"service_id,notnull,type:uuid"`
	StartTime  time.Time     `bun:"start_time,notnull"`
	EndTime    time.Time     `bun:"end_time,notnull"`
	Status     BookingStatus `bun:"status,notnull"`
	Notes      string        `bun:"notes"`

	// ExternalCalendarEventID is set by the sync worker once the remote
	// calendar event exists.
	ExternalCalendarEventID string `bun:"external_calendar_event_id"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (b Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
