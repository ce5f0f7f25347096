package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeEventCreate = "calendar:event:create"
	TypeEventUpdate = "calendar:event:update"
	TypeEventDelete = "calendar:event:delete"
)

type eventPayload struct {
	BookingID  uuid.UUID `json:"booking_id,omitempty"`
	ProviderID uuid.UUID `json:"provider_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
}

// Enqueuer publishes calendar sync tasks onto the asynq queue. It satisfies
// the scheduling service's enqueuer contract.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) BookingCreated(ctx context.Context, bookingID uuid.UUID) error {
	return e.enqueue(ctx, TypeEventCreate, eventPayload{BookingID: bookingID})
}

func (e *Enqueuer) BookingUpdated(ctx context.Context, bookingID uuid.UUID) error {
	return e.enqueue(ctx, TypeEventUpdate, eventPayload{BookingID: bookingID})
}

func (e *Enqueuer) BookingClosed(ctx context.Context, providerID uuid.UUID, eventID string) error {
	return e.enqueue(ctx, TypeEventDelete, eventPayload{ProviderID: providerID, EventID: eventID})
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload eventPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	if _, err := e.client.EnqueueContext(ctx, asynq.NewTask(taskType, data)); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
