package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"agendaria/backend/internal/calendar"
	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/store"
)

// Worker consumes calendar sync tasks and mirrors bookings into the
// provider's external calendar. Missing bookings and unlinked accounts are
// dropped; transient sink failures are returned so asynq retries them.
type Worker struct {
	sink      calendar.Sink
	bookings  store.BookingRepository
	directory store.DirectoryRepository
	log       *slog.Logger
}

func NewWorker(sink calendar.Sink, bookings store.BookingRepository, directory store.DirectoryRepository, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		sink:      sink,
		bookings:  bookings,
		directory: directory,
		log:       log.With(slog.String("component", "calendar_sync")),
	}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEventCreate, w.handleCreate)
	mux.HandleFunc(TypeEventUpdate, w.handleUpdate)
	mux.HandleFunc(TypeEventDelete, w.handleDelete)
}

// NewServer builds the asynq server the sync worker runs on.
func NewServer(redisAddr string, log *slog.Logger) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 10,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error("sync task failed",
					slog.String("type", task.Type()),
					slog.Any("err", err),
				)
			}),
		},
	)
}

func (w *Worker) handleCreate(ctx context.Context, task *asynq.Task) error {
	var payload eventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", task.Type(), err)
	}

	booking, err := w.bookings.GetBooking(ctx, payload.BookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.log.Info("booking gone before sync, dropping task",
				slog.String("booking_id", payload.BookingID.String()))
			return nil
		}
		return err
	}
	if !booking.Status.Occupies() {
		return nil
	}
	if booking.ExternalCalendarEventID != "" {
		return nil
	}

	event, err := w.buildEvent(ctx, booking)
	if err != nil {
		return err
	}
	eventID, err := w.sink.CreateEvent(ctx, booking.ProviderID, event)
	if err != nil {
		if errors.Is(err, calendar.ErrNotLinked) {
			return nil
		}
		return err
	}

	if err := w.bookings.SetExternalEventID(ctx, booking.ID, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Booking deleted between sync and write-back; clean up the
			// orphaned event.
			return w.sink.DeleteEvent(ctx, booking.ProviderID, eventID)
		}
		return err
	}
	return nil
}

func (w *Worker) handleUpdate(ctx context.Context, task *asynq.Task) error {
	var payload eventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", task.Type(), err)
	}

	booking, err := w.bookings.GetBooking(ctx, payload.BookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if booking.ExternalCalendarEventID == "" {
		// Never synced; fall back to creating the event.
		return w.handleCreate(ctx, task)
	}

	event, err := w.buildEvent(ctx, booking)
	if err != nil {
		return err
	}
	if err := w.sink.UpdateEvent(ctx, booking.ProviderID, booking.ExternalCalendarEventID, event); err != nil {
		if errors.Is(err, calendar.ErrNotLinked) {
			return nil
		}
		return err
	}
	return nil
}

func (w *Worker) handleDelete(ctx context.Context, task *asynq.Task) error {
	var payload eventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", task.Type(), err)
	}
	if err := w.sink.DeleteEvent(ctx, payload.ProviderID, payload.EventID); err != nil {
		if errors.Is(err, calendar.ErrNotLinked) {
			return nil
		}
		return err
	}
	return nil
}

func (w *Worker) buildEvent(ctx context.Context, booking domain.Booking) (calendar.Event, error) {
	summary := "Booking"
	if svc, err := w.directory.GetService(ctx, booking.ServiceID); err == nil {
		summary = svc.Name
	}
	if client, err := w.directory.GetUser(ctx, booking.ClientID); err == nil && client.Name != "" {
		summary = fmt.Sprintf("%s with %s", summary, client.Name)
	}
	return calendar.Event{
		Summary:     summary,
		Description: booking.Notes,
		Start:       booking.StartTime,
		End:         booking.EndTime,
	}, nil
}
