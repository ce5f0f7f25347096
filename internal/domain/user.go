package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// CanProvide reports whether users with this role can be booked for services.
func (r Role) CanProvide() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Actor is the caller identity supplied by the transport layer. The core
// trusts it for ownership and role checks; it never fetches roles itself.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         Role      `bun:"role,notnull"`
	Phone        string    `bun:"phone"`

	GoogleAccessToken  string     `bun:"google_access_token"`
	GoogleRefreshToken string     `bun:"google_refresh_token"`
	GoogleTokenExpiry  *time.Time `bun:"google_token_expiry"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if u.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			u.ID = id
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		u.UpdatedAt = now
	}
	return nil
}
