package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *BookingRepo) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepo) ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("client_id = ?", clientID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListForProviders(ctx context.Context, providerIDs []uuid.UUID) ([]domain.Booking, error) {
	if len(providerIDs) == 0 {
		return []domain.Booking{}, nil
	}
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id IN (?)", bun.In(providerIDs)).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListActive(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	return listActiveBookings(ctx, r.db, providerID, windowStart, windowEnd)
}

func (r *BookingRepo) SetExternalEventID(ctx context.Context, bookingID uuid.UUID, eventID string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("external_calendar_event_id = ?", eventID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// InProviderTransaction serializes all schedule writes for one provider with
// a transaction-scoped advisory lock, closing the race between the overlap
// check and the insert.
func (r *BookingRepo) InProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockProviderSchedule(ctx, tx, providerID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockProviderSchedule(ctx context.Context, tx bun.Tx, providerID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", providerID.String()).Exec(ctx)
	return err
}

func (t scheduleTx) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := t.tx.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (t scheduleTx) ListRules(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]domain.AvailabilityRule, error) {
	return listRulesForDay(ctx, t.tx, providerID, dayOfWeek)
}

func (t scheduleTx) ListActiveBookings(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	return listActiveBookings(ctx, t.tx, providerID, windowStart, windowEnd)
}

func (t scheduleTx) CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	m := booking
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 23P01: exclusion constraint, 23505: unique violation. Either
			// way another booking beat us to the slot.
			if pgErr.Code == "23P01" || pgErr.Code == "23505" {
				return domain.Booking{}, store.ErrConflict
			}
		}
		return domain.Booking{}, err
	}
	return m, nil
}

func (t scheduleTx) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	res, err := t.tx.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}
	return t.GetBooking(ctx, bookingID)
}

func (t scheduleTx) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	res, err := t.tx.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func listActiveBookings(ctx context.Context, db bun.IDB, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("status IN (?)", bun.In([]domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed})).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
