package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"agendaria/backend/internal/auth"
	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/service/accounts"
	"agendaria/backend/internal/service/availability"
	"agendaria/backend/internal/service/scheduling"
)

// AccountService is the account surface the API exposes.
type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (accounts.LoginResult, error)
}

// SchedulingService is the booking surface the API exposes.
type SchedulingService interface {
	FindAvailableSlots(ctx context.Context, providerID, serviceID uuid.UUID, date time.Time) ([]scheduling.Slot, error)
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, next domain.BookingStatus, actor domain.Actor) (domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID, actor domain.Actor) error
	ListForClient(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ListForProvider(ctx context.Context, actor domain.Actor) ([]domain.Booking, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, actor domain.Actor) ([]domain.Booking, error)
}

// AvailabilityService is the rule-management surface the API exposes.
type AvailabilityService interface {
	CreateRule(ctx context.Context, in availability.RuleInput, actor domain.Actor) (domain.AvailabilityRule, error)
	GetRule(ctx context.Context, ruleID uuid.UUID, actor domain.Actor) (domain.AvailabilityRule, error)
	ListForProvider(ctx context.Context, providerID uuid.UUID) ([]domain.AvailabilityRule, error)
	UpdateRule(ctx context.Context, ruleID uuid.UUID, in availability.RuleInput, actor domain.Actor) (domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, ruleID uuid.UUID, actor domain.Actor) error
}

// CalendarLinker drives the external-calendar OAuth flow.
type CalendarLinker interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, userID uuid.UUID, code string) error
}

type Deps struct {
	Accounts     AccountService
	Scheduling   SchedulingService
	Availability AvailabilityService
	Calendar     CalendarLinker
	Tokens       *auth.TokenIssuer
	Log          *slog.Logger
}

type Server struct {
	echo *echo.Echo
	deps Deps
}

func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(deps.Log))

	s := &Server{echo: e, deps: deps}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/register", s.handleRegister)
	e.POST("/auth/login", s.handleLogin)
	e.GET("/calendar/google/callback", s.handleGoogleCallback)

	api := e.Group("/api", requireAuth(s.deps.Tokens))

	api.GET("/providers/:providerId/slots", s.handleFindSlots)
	api.GET("/providers/:providerId/availability", s.handleListRules)
	api.POST("/providers/:providerId/availability", s.handleCreateRule,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))

	api.GET("/availability/:ruleId", s.handleGetRule,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))
	api.PUT("/availability/:ruleId", s.handleUpdateRule,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))
	api.DELETE("/availability/:ruleId", s.handleDeleteRule,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))

	api.POST("/bookings", s.handleCreateBooking, requireRole(domain.RoleClient))
	api.GET("/bookings/client", s.handleListClientBookings, requireRole(domain.RoleClient))
	api.GET("/bookings/provider", s.handleListProviderBookings,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))
	api.GET("/companies/:companyId/bookings", s.handleListCompanyBookings,
		requireRole(domain.RoleAdmin))
	api.PATCH("/bookings/:id/status", s.handleUpdateBookingStatus)
	api.DELETE("/bookings/:id", s.handleDeleteBooking)

	api.GET("/calendar/google/url", s.handleGoogleAuthURL,
		requireRole(domain.RoleEmployee, domain.RoleAdmin))
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.Any("err", v.Error))
			}
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	})
}

func (s *Server) Start(addr string) error {
	s.deps.Log.Info("http server listening", slog.String("addr", addr))
	err := s.echo.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
