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

type DirectoryRepo struct {
	db *bun.DB
}

func NewDirectoryRepo(db *bun.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	m := user
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, store.ErrConflict
		}
		return domain.User{}, err
	}
	return m, nil
}

func (r *DirectoryRepo) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *DirectoryRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *DirectoryRepo) SaveGoogleTokens(ctx context.Context, userID uuid.UUID, accessToken, refreshToken string, expiry *time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*domain.User)(nil)).
		Set("google_access_token = ?", accessToken).
		Set("google_refresh_token = ?", refreshToken).
		Set("google_token_expiry = ?", expiry).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
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

func (r *DirectoryRepo) GetService(ctx context.Context, serviceID uuid.UUID) (domain.Service, error) {
	var s domain.Service
	err := r.db.NewSelect().
		Model(&s).
		Where("id = ?", serviceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, store.ErrNotFound
		}
		return domain.Service{}, err
	}
	return s, nil
}

func (r *DirectoryRepo) ProviderOffersService(ctx context.Context, providerID, serviceID uuid.UUID) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.EmployeeService)(nil)).
		Where("employee_id = ?", providerID).
		Where("service_id = ?", serviceID).
		Exists(ctx)
}

func (r *DirectoryRepo) GetCompany(ctx context.Context, companyID uuid.UUID) (domain.Company, error) {
	var c domain.Company
	err := r.db.NewSelect().
		Model(&c).
		Where("id = ?", companyID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Company{}, store.ErrNotFound
		}
		return domain.Company{}, err
	}
	return c, nil
}

func (r *DirectoryRepo) ListAcceptedEmployeeIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*domain.CompanyEmployee)(nil)).
		Column("employee_id").
		Where("company_id = ?", companyID).
		Where("status = ?", domain.MembershipAccepted).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *DirectoryRepo) AdminOwnsProviderCompany(ctx context.Context, adminID, providerID uuid.UUID) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.CompanyEmployee)(nil)).
		Join("JOIN companies AS c ON c.id = company_employee.company_id").
		Where("company_employee.employee_id = ?", providerID).
		Where("company_employee.status = ?", domain.MembershipAccepted).
		Where("c.owner_id = ?", adminID).
		Exists(ctx)
}
