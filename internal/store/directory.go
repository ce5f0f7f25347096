package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agendaria/backend/internal/domain"
)

// DirectoryRepository covers the user, company and service lookups the
// scheduling core needs, plus account and calendar-token persistence.
type DirectoryRepository interface {
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	SaveGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiry *time.Time) error

	GetService(ctx context.Context, serviceID uuid.UUID) (domain.Service, error)
	ProviderOffersService(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error)

	GetCompany(ctx context.Context, companyID uuid.UUID) (domain.Company, error)
	ListAcceptedEmployeeIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)

	// AdminOwnsProviderCompany reports whether adminID owns a company that
	// employs providerID with accepted status.
	AdminOwnsProviderCompany(ctx context.Context, adminID, providerID uuid.UUID) (bool, error)
}
