package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/fault"
	"agendaria/backend/internal/store"
)

// CalendarEnqueuer publishes calendar-sync work after a booking commit. All
// methods are best-effort from the booking's point of view: failures are
// logged by the caller and never surfaced to booking operations.
type CalendarEnqueuer interface {
	BookingCreated(ctx context.Context, bookingID uuid.UUID) error
	BookingUpdated(ctx context.Context, bookingID uuid.UUID) error
	BookingClosed(ctx context.Context, providerID uuid.UUID, eventID string) error
}

type Service struct {
	bookings  store.BookingRepository
	rules     store.AvailabilityRepository
	directory store.DirectoryRepository
	sync      CalendarEnqueuer
	log       *slog.Logger
}

func NewService(bookings store.BookingRepository, rules store.AvailabilityRepository, directory store.DirectoryRepository, sync CalendarEnqueuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		bookings:  bookings,
		rules:     rules,
		directory: directory,
		sync:      sync,
		log:       log.With(slog.String("component", "scheduling")),
	}
}

// FindAvailableSlots computes the bookable windows for a provider, service
// and calendar date. A day with no matching availability rules yields an
// empty list, not an error.
func (s *Service) FindAvailableSlots(ctx context.Context, providerID, serviceID uuid.UUID, date time.Time) ([]Slot, error) {
	provider, err := s.lookupProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	svc, err := s.lookupOfferedService(ctx, provider.ID, serviceID)
	if err != nil {
		return nil, err
	}

	day := domain.DateOf(date)
	rules, err := s.rules.ListRulesForDay(ctx, providerID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	matched := rules[:0:0]
	for _, r := range rules {
		if r.AppliesOn(day) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return []Slot{}, nil
	}

	busy, err := s.bookings.ListActive(ctx, providerID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	return availableSlots(matched, busy, day, svc.Duration()), nil
}

type CreateBookingInput struct {
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	ServiceID  uuid.UUID
	StartTime  time.Time
	Notes      string
}

// CreateBooking validates availability and conflicts inside a provider-locked
// transaction, persists the booking as pending, then enqueues calendar sync.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	client, err := s.directory.GetUser(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Booking{}, fault.New(fault.KindNotFound, "client not found")
		}
		return domain.Booking{}, err
	}
	if client.Role != domain.RoleClient {
		return domain.Booking{}, fault.New(fault.KindNotFound, "client not found")
	}

	provider, err := s.lookupProvider(ctx, in.ProviderID)
	if err != nil {
		return domain.Booking{}, err
	}
	svc, err := s.lookupOfferedService(ctx, provider.ID, in.ServiceID)
	if err != nil {
		return domain.Booking{}, err
	}

	start := in.StartTime.UTC()
	requested := domain.TimeRange{Start: start, End: start.Add(svc.Duration())}

	var out domain.Booking
	err = s.bookings.InProviderTransaction(ctx, provider.ID, func(ctx context.Context, tx store.ScheduleTx) error {
		if err := s.ensureWithinAvailability(ctx, tx, provider.ID, requested); err != nil {
			return err
		}
		if err := ensureNoBookingConflicts(ctx, tx, provider.ID, requested); err != nil {
			return err
		}

		b, err := tx.CreateBooking(ctx, domain.Booking{
			ClientID:   client.ID,
			ProviderID: provider.ID,
			ServiceID:  svc.ID,
			StartTime:  requested.Start,
			EndTime:    requested.End,
			Status:     domain.BookingPending,
			Notes:      in.Notes,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fault.New(fault.KindConflict, "requested time slot conflicts with an existing booking")
			}
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	if err := s.sync.BookingCreated(ctx, out.ID); err != nil {
		s.log.Warn("calendar sync enqueue failed",
			slog.Any("err", err),
			slog.String("booking_id", out.ID.String()),
		)
	}
	return out, nil
}

// ensureWithinAvailability requires at least one availability rule whose
// daily window fully contains the requested range and whose validity window
// covers both the start and end dates.
func (s *Service) ensureWithinAvailability(ctx context.Context, tx store.ScheduleTx, providerID uuid.UUID, requested domain.TimeRange) error {
	rules, err := tx.ListRules(ctx, providerID, int(requested.Start.UTC().Weekday()))
	if err != nil {
		return err
	}

	startDay := domain.DateOf(requested.Start)
	endDay := domain.DateOf(requested.End)
	for _, r := range rules {
		if !r.CoversDates(startDay, endDay) {
			continue
		}
		window, err := r.WindowOn(startDay)
		if err != nil {
			s.log.Warn("skipping malformed availability rule",
				slog.Any("err", err),
				slog.String("rule_id", r.ID.String()),
			)
			continue
		}
		if window.Contains(requested) {
			return nil
		}
	}
	return fault.New(fault.KindConflict, "provider is not available at the requested time")
}

func ensureNoBookingConflicts(ctx context.Context, tx store.ScheduleTx, providerID uuid.UUID, requested domain.TimeRange) error {
	existing, err := tx.ListActiveBookings(ctx, providerID, requested.Start, requested.End)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if requested.Overlaps(b.Range()) {
			return fault.New(fault.KindConflict, "requested time slot conflicts with an existing booking")
		}
	}
	return nil
}

// UpdateStatus applies a transition from the booking state machine, enforcing
// the actor rules: clients may only cancel their own bookings; the assigned
// provider, or an administrator owning the provider's company, may confirm,
// complete or cancel.
func (s *Service) UpdateStatus(ctx context.Context, bookingID uuid.UUID, next domain.BookingStatus, actor domain.Actor) (domain.Booking, error) {
	if !next.Valid() {
		return domain.Booking{}, fault.Newf(fault.KindInvalid, "unknown booking status %q", next)
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Booking{}, fault.New(fault.KindNotFound, "booking not found")
		}
		return domain.Booking{}, err
	}

	if err := s.authorizeTransition(ctx, booking, next, actor); err != nil {
		return domain.Booking{}, err
	}

	var out domain.Booking
	err = s.bookings.InProviderTransaction(ctx, booking.ProviderID, func(ctx context.Context, tx store.ScheduleTx) error {
		current, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fault.New(fault.KindNotFound, "booking not found")
			}
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return fault.Newf(fault.KindInvalidTransition, "invalid status transition from %s to %s", current.Status, next)
		}
		out, err = tx.UpdateBookingStatus(ctx, bookingID, next)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.enqueueAfterTransition(ctx, out, next)
	return out, nil
}

func (s *Service) authorizeTransition(ctx context.Context, booking domain.Booking, next domain.BookingStatus, actor domain.Actor) error {
	switch {
	case actor.Role == domain.RoleClient && actor.ID == booking.ClientID:
		if next != domain.BookingCanceled {
			return fault.New(fault.KindForbidden, "clients may only cancel their own bookings")
		}
		return nil
	case actor.Role.CanProvide() && actor.ID == booking.ProviderID:
		return nil
	case actor.Role == domain.RoleAdmin:
		owns, err := s.directory.AdminOwnsProviderCompany(ctx, actor.ID, booking.ProviderID)
		if err != nil {
			return err
		}
		if !owns {
			return fault.New(fault.KindForbidden, "administrator does not manage this provider's company")
		}
		return nil
	}
	return fault.New(fault.KindForbidden, "not authorized to update this booking")
}

func (s *Service) enqueueAfterTransition(ctx context.Context, booking domain.Booking, next domain.BookingStatus) {
	var err error
	if next == domain.BookingCanceled || next == domain.BookingCompleted {
		if booking.ExternalCalendarEventID == "" {
			return
		}
		err = s.sync.BookingClosed(ctx, booking.ProviderID, booking.ExternalCalendarEventID)
	} else {
		err = s.sync.BookingUpdated(ctx, booking.ID)
	}
	if err != nil {
		s.log.Warn("calendar sync enqueue failed",
			slog.Any("err", err),
			slog.String("booking_id", booking.ID.String()),
			slog.String("status", string(next)),
		)
	}
}

// DeleteBooking removes a booking record. Clients may delete their own
// bookings only while pending; the provider or an owning administrator may
// delete regardless of status.
func (s *Service) DeleteBooking(ctx context.Context, bookingID uuid.UUID, actor domain.Actor) error {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fault.New(fault.KindNotFound, "booking not found")
		}
		return err
	}

	switch {
	case actor.Role == domain.RoleClient && actor.ID == booking.ClientID:
		if booking.Status != domain.BookingPending {
			return fault.New(fault.KindForbidden, "clients may only delete pending bookings")
		}
	case actor.Role.CanProvide() && actor.ID == booking.ProviderID:
	case actor.Role == domain.RoleAdmin:
		owns, err := s.directory.AdminOwnsProviderCompany(ctx, actor.ID, booking.ProviderID)
		if err != nil {
			return err
		}
		if !owns {
			return fault.New(fault.KindForbidden, "administrator does not manage this provider's company")
		}
	default:
		return fault.New(fault.KindForbidden, "not authorized to delete this booking")
	}

	err = s.bookings.InProviderTransaction(ctx, booking.ProviderID, func(ctx context.Context, tx store.ScheduleTx) error {
		return tx.DeleteBooking(ctx, bookingID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fault.New(fault.KindNotFound, "booking not found")
		}
		return err
	}

	if booking.ExternalCalendarEventID != "" {
		if err := s.sync.BookingClosed(ctx, booking.ProviderID, booking.ExternalCalendarEventID); err != nil {
			s.log.Warn("calendar sync enqueue failed",
				slog.Any("err", err),
				slog.String("booking_id", booking.ID.String()),
			)
		}
	}
	return nil
}

// ListForClient returns the actor's own bookings.
func (s *Service) ListForClient(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	return s.bookings.ListForClient(ctx, actor.ID)
}

// ListForProvider returns the actor's own provider schedule.
func (s *Service) ListForProvider(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	return s.bookings.ListForProvider(ctx, actor.ID)
}

// ListForCompany returns all bookings of a company's accepted employees,
// restricted to the company owner.
func (s *Service) ListForCompany(ctx context.Context, companyID uuid.UUID, actor domain.Actor) ([]domain.Booking, error) {
	company, err := s.directory.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fault.New(fault.KindNotFound, "company not found")
		}
		return nil, err
	}
	if company.OwnerID != actor.ID {
		return nil, fault.New(fault.KindForbidden, "only the company owner may list company bookings")
	}

	ids, err := s.directory.ListAcceptedEmployeeIDs(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Booking{}, nil
	}
	return s.bookings.ListForProviders(ctx, ids)
}

func (s *Service) lookupProvider(ctx context.Context, providerID uuid.UUID) (domain.User, error) {
	provider, err := s.directory.GetUser(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fault.New(fault.KindNotFound, "provider not found or not eligible for bookings")
		}
		return domain.User{}, err
	}
	if !provider.Role.CanProvide() {
		return domain.User{}, fault.New(fault.KindNotFound, "provider not found or not eligible for bookings")
	}
	return provider, nil
}

func (s *Service) lookupOfferedService(ctx context.Context, providerID, serviceID uuid.UUID) (domain.Service, error) {
	svc, err := s.directory.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Service{}, fault.New(fault.KindNotFound, "service not found")
		}
		return domain.Service{}, err
	}
	if svc.DurationMinutes <= 0 {
		return domain.Service{}, fault.New(fault.KindInvalid, "service has no bookable duration")
	}
	offers, err := s.directory.ProviderOffersService(ctx, providerID, serviceID)
	if err != nil {
		return domain.Service{}, err
	}
	if !offers {
		return domain.Service{}, fault.New(fault.KindInvalid, "provider does not offer this service")
	}
	return svc, nil
}
