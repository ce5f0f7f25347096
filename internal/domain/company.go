package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Company struct {
	bun.BaseModel `bun:"table:companies"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID   uuid.UUID `bun:"owner_id,notnull,type:uuid"`
	Name      string    `bun:"name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (c *Company) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if c.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			c.ID = id
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		c.UpdatedAt = now
	}
	return nil
}

type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipRejected MembershipStatus = "rejected"
)

// CompanyEmployee links a provider to the company employing them. Only
// accepted memberships grant the company owner management rights over the
// provider's availability and bookings.
type CompanyEmployee struct {
	bun.BaseModel `bun:"table:company_employees"`

	CompanyID  uuid.UUID        `bun:"company_id,pk,type:uuid"`
	EmployeeID uuid.UUID        `bun:"employee_id,pk,type:uuid"`
	Status     MembershipStatus `bun:"status,notnull"`
	CreatedAt  time.Time        `bun:"created_at,notnull"`
	UpdatedAt  time.Time        `bun:"updated_at,notnull"`
}

func (ce *CompanyEmployee) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if ce.CreatedAt.IsZero() {
			ce.CreatedAt = now
		}
		if ce.UpdatedAt.IsZero() {
			ce.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		ce.UpdatedAt = now
	}
	return nil
}
