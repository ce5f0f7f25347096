package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/service/accounts"
	"agendaria/backend/internal/service/availability"
	"agendaria/backend/internal/service/scheduling"
)

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := s.deps.Accounts.Register(c.Request().Context(), accounts.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Phone:    req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	out, err := s.deps.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: out.Token, User: out.User})
}

func (s *Server) handleFindSlots(c echo.Context) error {
	providerID, ok := pathUUID(c, "providerId")
	if !ok {
		return badRequest(c, "invalid provider id")
	}
	serviceID, err := uuid.Parse(c.QueryParam("serviceId"))
	if err != nil {
		return badRequest(c, "serviceId query parameter is required")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return badRequest(c, "date query parameter must be YYYY-MM-DD")
	}

	slots, err := s.deps.Scheduling.FindAvailableSlots(c.Request().Context(), providerID, serviceID, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

type createBookingRequest struct {
	ProviderID string    `json:"providerId"`
	ServiceID  string    `json:"serviceId"`
	StartTime  time.Time `json:"startTime"`
	Notes      string    `json:"notes"`
}

func (s *Server) handleCreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		return badRequest(c, "invalid provider id")
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return badRequest(c, "invalid service id")
	}
	if req.StartTime.IsZero() {
		return badRequest(c, "startTime is required")
	}

	booking, err := s.deps.Scheduling.CreateBooking(c.Request().Context(), scheduling.CreateBookingInput{
		ClientID:   actorFrom(c).ID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		StartTime:  req.StartTime,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateBookingStatus(c echo.Context) error {
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	booking, err := s.deps.Scheduling.UpdateStatus(c.Request().Context(), bookingID,
		domain.BookingStatus(req.Status), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(c echo.Context) error {
	bookingID, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	if err := s.deps.Scheduling.DeleteBooking(c.Request().Context(), bookingID, actorFrom(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListClientBookings(c echo.Context) error {
	bookings, err := s.deps.Scheduling.ListForClient(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) handleListProviderBookings(c echo.Context) error {
	bookings, err := s.deps.Scheduling.ListForProvider(c.Request().Context(), actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

func (s *Server) handleListCompanyBookings(c echo.Context) error {
	companyID, ok := pathUUID(c, "companyId")
	if !ok {
		return badRequest(c, "invalid company id")
	}
	bookings, err := s.deps.Scheduling.ListForCompany(c.Request().Context(), companyID, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

type ruleRequest struct {
	DayOfWeek      int    `json:"dayOfWeek"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Recurring      bool   `json:"isRecurring"`
	EffectiveDate  string `json:"effectiveDate"`
	ExpirationDate string `json:"expirationDate"`
}

func (r ruleRequest) input(providerID uuid.UUID) (availability.RuleInput, error) {
	in := availability.RuleInput{
		ProviderID: providerID,
		DayOfWeek:  r.DayOfWeek,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Recurring:  r.Recurring,
	}
	parseDate := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	var err error
	if in.EffectiveDate, err = parseDate(r.EffectiveDate); err != nil {
		return availability.RuleInput{}, err
	}
	if in.ExpirationDate, err = parseDate(r.ExpirationDate); err != nil {
		return availability.RuleInput{}, err
	}
	return in, nil
}

func (s *Server) handleCreateRule(c echo.Context) error {
	providerID, ok := pathUUID(c, "providerId")
	if !ok {
		return badRequest(c, "invalid provider id")
	}
	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, err := req.input(providerID)
	if err != nil {
		return badRequest(c, "dates must be YYYY-MM-DD")
	}

	rule, err := s.deps.Availability.CreateRule(c.Request().Context(), in, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rule)
}

func (s *Server) handleListRules(c echo.Context) error {
	providerID, ok := pathUUID(c, "providerId")
	if !ok {
		return badRequest(c, "invalid provider id")
	}
	rules, err := s.deps.Availability.ListForProvider(c.Request().Context(), providerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rules)
}

func (s *Server) handleGetRule(c echo.Context) error {
	ruleID, ok := pathUUID(c, "ruleId")
	if !ok {
		return badRequest(c, "invalid rule id")
	}
	rule, err := s.deps.Availability.GetRule(c.Request().Context(), ruleID, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

func (s *Server) handleUpdateRule(c echo.Context) error {
	ruleID, ok := pathUUID(c, "ruleId")
	if !ok {
		return badRequest(c, "invalid rule id")
	}
	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	in, err := req.input(uuid.Nil)
	if err != nil {
		return badRequest(c, "dates must be YYYY-MM-DD")
	}

	rule, err := s.deps.Availability.UpdateRule(c.Request().Context(), ruleID, in, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(c echo.Context) error {
	ruleID, ok := pathUUID(c, "ruleId")
	if !ok {
		return badRequest(c, "invalid rule id")
	}
	if err := s.deps.Availability.DeleteRule(c.Request().Context(), ruleID, actorFrom(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleGoogleAuthURL returns the consent URL for linking the actor's Google
// Calendar. The state parameter is a short-lived token identifying the actor.
func (s *Server) handleGoogleAuthURL(c echo.Context) error {
	actor := actorFrom(c)
	state, err := s.deps.Tokens.Issue(actor.ID, actor.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"url": s.deps.Calendar.AuthURL(state),
	})
}

func (s *Server) handleGoogleCallback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		return badRequest(c, "state and code query parameters are required")
	}

	actor, err := s.deps.Tokens.Parse(state)
	if err != nil {
		return writeError(c, err)
	}
	if err := s.deps.Calendar.ExchangeCode(c.Request().Context(), actor.ID, code); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "linked"})
}
