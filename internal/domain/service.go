package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	CompanyID       uuid.UUID `bun:"company_id,notnull,type:uuid"`
	Name            string    `bun:"name,notnull"`
	Description     string    `bun:"description"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	PriceCents      int64     `bun:"price_cents,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// Duration is the slot length the scheduling engine books for this service.
func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

// EmployeeService records that a provider offers a service.
type EmployeeService struct {
	bun.BaseModel `bun:"table:employee_services"`

	EmployeeID uuid.UUID `bun:"employee_id,pk,type:uuid"`
	ServiceID  uuid.UUID `bun:"service_id,pk,type:uuid"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (es *EmployeeService) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && es.CreatedAt.IsZero() {
		es.CreatedAt = time.Now().UTC()
	}
	return nil
}
