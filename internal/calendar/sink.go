package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotLinked is returned when a provider has not connected an external
// calendar. Sync handlers treat it as a no-op, not a failure.
var ErrNotLinked = errors.New("calendar: account not linked")

// Event is the provider-agnostic shape pushed to an external calendar.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Sink mirrors bookings into an external calendar on behalf of a provider.
type Sink interface {
	// CreateEvent inserts an event into the provider's calendar and returns
	// the remote event id.
	CreateEvent(ctx context.Context, providerID uuid.UUID, event Event) (string, error)
	UpdateEvent(ctx context.Context, providerID uuid.UUID, eventID string, event Event) error
	DeleteEvent(ctx context.Context, providerID uuid.UUID, eventID string) error
}
