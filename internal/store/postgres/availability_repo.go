package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/store"
)

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) CreateRule(ctx context.Context, rule domain.AvailabilityRule) (domain.AvailabilityRule, error) {
	m := rule
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.AvailabilityRule{}, err
	}
	return m, nil
}

func (r *AvailabilityRepo) GetRule(ctx context.Context, ruleID uuid.UUID) (domain.AvailabilityRule, error) {
	var rule domain.AvailabilityRule
	err := r.db.NewSelect().
		Model(&rule).
		Where("id = ?", ruleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AvailabilityRule{}, store.ErrNotFound
		}
		return domain.AvailabilityRule{}, err
	}
	return rule, nil
}

func (r *AvailabilityRepo) ListRulesForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.AvailabilityRule, error) {
	var rows []domain.AvailabilityRule
	err := r.db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		OrderExpr("day_of_week ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AvailabilityRepo) ListRulesForDay(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]domain.AvailabilityRule, error) {
	return listRulesForDay(ctx, r.db, providerID, dayOfWeek)
}

func (r *AvailabilityRepo) UpdateRule(ctx context.Context, rule domain.AvailabilityRule) (domain.AvailabilityRule, error) {
	m := rule
	res, err := r.db.NewUpdate().
		Model(&m).
		Column("day_of_week", "start_time", "end_time", "is_recurring", "effective_date", "expiration_date", "updated_at").
		Where("id = ?", rule.ID).
		Exec(ctx)
	if err != nil {
		return domain.AvailabilityRule{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.AvailabilityRule{}, err
	}
	if affected == 0 {
		return domain.AvailabilityRule{}, store.ErrNotFound
	}
	return m, nil
}

func (r *AvailabilityRepo) DeleteRule(ctx context.Context, ruleID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.AvailabilityRule)(nil)).
		Where("id = ?", ruleID).
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

func listRulesForDay(ctx context.Context, db bun.IDB, providerID uuid.UUID, dayOfWeek int) ([]domain.AvailabilityRule, error) {
	var rows []domain.AvailabilityRule
	err := db.NewSelect().
		Model(&rows).
		Where("provider_id = ?", providerID).
		Where("day_of_week = ?", dayOfWeek).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
