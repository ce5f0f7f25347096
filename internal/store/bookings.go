package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendaria/backend/internal/domain"
)

type BookingRepository interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Booking, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Booking, error)
	ListForProviders(ctx context.Context, providerIDs []uuid.UUID) ([]domain.Booking, error)

	// ListActive returns pending/confirmed bookings for the provider whose
	// [start_time, end_time) overlaps [windowStart, windowEnd), ordered by
	// start time.
	ListActive(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)

	// SetExternalEventID records the remote calendar event backing a booking.
	SetExternalEventID(ctx context.Context, bookingID uuid.UUID, eventID string) error

	// InProviderTransaction runs fn inside a transaction holding an advisory
	// lock on the provider's schedule, serializing read-check-write sequences
	// against that provider.
	InProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx ScheduleTx) error) error
}

// ScheduleTx is the per-provider transactional view used by booking creation
// and lifecycle transitions.
type ScheduleTx interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListRules(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]domain.AvailabilityRule, error)
	ListActiveBookings(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
}
