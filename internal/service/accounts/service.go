package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"agendaria/backend/internal/auth"
	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/fault"
	"agendaria/backend/internal/store"
)

// Service handles registration and login. Password hashes never leave this
// package.
type Service struct {
	directory store.DirectoryRepository
	tokens    *auth.TokenIssuer
	log       *slog.Logger
}

func NewService(directory store.DirectoryRepository, tokens *auth.TokenIssuer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		directory: directory,
		tokens:    tokens,
		log:       log.With(slog.String("component", "accounts")),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Phone    string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return domain.User{}, fault.New(fault.KindInvalid, "name and email are required")
	}
	if len(in.Password) < 8 {
		return domain.User{}, fault.New(fault.KindInvalid, "password must be at least 8 characters")
	}
	if !in.Role.Valid() {
		return domain.User{}, fault.Newf(fault.KindInvalid, "unknown role %q", in.Role)
	}

	if _, err := s.directory.GetUserByEmail(ctx, in.Email); err == nil {
		return domain.User{}, fault.New(fault.KindConflict, "email is already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.directory.CreateUser(ctx, domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Phone:        in.Phone,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.User{}, fault.New(fault.KindConflict, "email is already registered")
		}
		return domain.User{}, err
	}

	s.log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	user.PasswordHash = ""
	return user, nil
}

type LoginResult struct {
	Token string
	User  domain.User
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.directory.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, fault.New(fault.KindUnauthenticated, "invalid email or password")
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, fault.New(fault.KindUnauthenticated, "invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, err
	}
	user.PasswordHash = ""
	return LoginResult{Token: token, User: user}, nil
}
