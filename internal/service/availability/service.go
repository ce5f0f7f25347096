package availability

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

// Service manages provider availability rules. Providers manage their own
// rules; administrators may manage rules for providers their company employs.
type Service struct {
	rules     store.AvailabilityRepository
	directory store.DirectoryRepository
	log       *slog.Logger
}

func NewService(rules store.AvailabilityRepository, directory store.DirectoryRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		rules:     rules,
		directory: directory,
		log:       log.With(slog.String("component", "availability")),
	}
}

type RuleInput struct {
	ProviderID     uuid.UUID
	DayOfWeek      int
	StartTime      string
	EndTime        string
	Recurring      bool
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
}

func (in RuleInput) rule() domain.AvailabilityRule {
	return domain.AvailabilityRule{
		ProviderID:     in.ProviderID,
		DayOfWeek:      in.DayOfWeek,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		Recurring:      in.Recurring,
		EffectiveDate:  in.EffectiveDate,
		ExpirationDate: in.ExpirationDate,
	}
}

// CreateRule validates and stores a new availability rule. Rules that can
// cover the same date with intersecting daily windows are rejected so a
// provider's schedule stays unambiguous.
func (s *Service) CreateRule(ctx context.Context, in RuleInput, actor domain.Actor) (domain.AvailabilityRule, error) {
	if err := s.authorize(ctx, in.ProviderID, actor); err != nil {
		return domain.AvailabilityRule{}, err
	}

	rule := in.rule()
	if err := rule.Validate(); err != nil {
		return domain.AvailabilityRule{}, fault.New(fault.KindInvalid, err.Error())
	}

	provider, err := s.directory.GetUser(ctx, in.ProviderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AvailabilityRule{}, fault.New(fault.KindNotFound, "provider not found")
		}
		return domain.AvailabilityRule{}, err
	}
	if !provider.Role.CanProvide() {
		return domain.AvailabilityRule{}, fault.New(fault.KindInvalid, "user cannot hold availability rules")
	}

	if err := s.ensureNoRuleOverlap(ctx, rule, uuid.Nil); err != nil {
		return domain.AvailabilityRule{}, err
	}
	return s.rules.CreateRule(ctx, rule)
}

func (s *Service) GetRule(ctx context.Context, ruleID uuid.UUID, actor domain.Actor) (domain.AvailabilityRule, error) {
	rule, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AvailabilityRule{}, fault.New(fault.KindNotFound, "availability rule not found")
		}
		return domain.AvailabilityRule{}, err
	}
	if err := s.authorize(ctx, rule.ProviderID, actor); err != nil {
		return domain.AvailabilityRule{}, err
	}
	return rule, nil
}

// ListForProvider is public: clients browse provider schedules before booking.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.AvailabilityRule, error) {
	rules, err := s.rules.ListRulesForProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []domain.AvailabilityRule{}
	}
	return rules, nil
}

func (s *Service) UpdateRule(ctx context.Context, ruleID uuid.UUID, in RuleInput, actor domain.Actor) (domain.AvailabilityRule, error) {
	existing, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AvailabilityRule{}, fault.New(fault.KindNotFound, "availability rule not found")
		}
		return domain.AvailabilityRule{}, err
	}
	if err := s.authorize(ctx, existing.ProviderID, actor); err != nil {
		return domain.AvailabilityRule{}, err
	}

	updated := in.rule()
	updated.ID = existing.ID
	updated.ProviderID = existing.ProviderID
	updated.CreatedAt = existing.CreatedAt
	if err := updated.Validate(); err != nil {
		return domain.AvailabilityRule{}, fault.New(fault.KindInvalid, err.Error())
	}
	if err := s.ensureNoRuleOverlap(ctx, updated, existing.ID); err != nil {
		return domain.AvailabilityRule{}, err
	}

	out, err := s.rules.UpdateRule(ctx, updated)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AvailabilityRule{}, fault.New(fault.KindNotFound, "availability rule not found")
		}
		return domain.AvailabilityRule{}, err
	}
	return out, nil
}

func (s *Service) DeleteRule(ctx context.Context, ruleID uuid.UUID, actor domain.Actor) error {
	rule, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fault.New(fault.KindNotFound, "availability rule not found")
		}
		return err
	}
	if err := s.authorize(ctx, rule.ProviderID, actor); err != nil {
		return err
	}

	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fault.New(fault.KindNotFound, "availability rule not found")
		}
		return err
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, providerID uuid.UUID, actor domain.Actor) error {
	switch {
	case actor.ID == providerID && actor.Role.CanProvide():
		return nil
	case actor.Role == domain.RoleAdmin:
		owns, err := s.directory.AdminOwnsProviderCompany(ctx, actor.ID, providerID)
		if err != nil {
			return err
		}
		if owns {
			return nil
		}
	}
	return fault.New(fault.KindForbidden, "not authorized to manage this provider's availability")
}

// ensureNoRuleOverlap rejects a rule whose daily window intersects another
// rule on the same weekday that could apply on the same date. skipID excludes
// the rule being updated from the comparison.
func (s *Service) ensureNoRuleOverlap(ctx context.Context, rule domain.AvailabilityRule, skipID uuid.UUID) error {
	existing, err := s.rules.ListRulesForDay(ctx, rule.ProviderID, rule.DayOfWeek)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == skipID {
			continue
		}
		if rule.OverlapsTimeOfDay(other) && rule.DateWindowsIntersect(other) {
			return fault.Newf(fault.KindConflict,
				"rule overlaps an existing availability window (%s-%s)", other.StartTime, other.EndTime)
		}
	}
	return nil
}
