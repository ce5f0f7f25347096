package store

import (
	"context"

	"github.com/google/uuid"

	"agendaria/backend/internal/domain"
)

type AvailabilityRepository interface {
	CreateRule(ctx context.Context, rule domain.AvailabilityRule) (domain.AvailabilityRule, error)
	GetRule(ctx context.Context, ruleID uuid.UUID) (domain.AvailabilityRule, error)
	ListRulesForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.AvailabilityRule, error)
	ListRulesForDay(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]domain.AvailabilityRule, error)
	UpdateRule(ctx context.Context, rule domain.AvailabilityRule) (domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID) error
}
