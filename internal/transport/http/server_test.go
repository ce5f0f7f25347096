package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"agendaria/backend/internal/auth"
	"agendaria/backend/internal/domain"
	"agendaria/backend/internal/fault"
	"agendaria/backend/internal/service/accounts"
	"agendaria/backend/internal/service/availability"
	"agendaria/backend/internal/service/scheduling"
)

type fakeAccounts struct {
	registerErr error
	loginErr    error
}

func (f *fakeAccounts) Register(_ context.Context, in accounts.RegisterInput) (domain.User, error) {
	if f.registerErr != nil {
		return domain.User{}, f.registerErr
	}
	return domain.User{ID: uuid.New(), Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (f *fakeAccounts) Login(context.Context, string, string) (accounts.LoginResult, error) {
	if f.loginErr != nil {
		return accounts.LoginResult{}, f.loginErr
	}
	return accounts.LoginResult{Token: "token", User: domain.User{ID: uuid.New()}}, nil
}

type fakeScheduling struct {
	slots     []scheduling.Slot
	slotsErr  error
	createErr error
	created   []scheduling.CreateBookingInput
}

func (f *fakeScheduling) FindAvailableSlots(context.Context, uuid.UUID, uuid.UUID, time.Time) ([]scheduling.Slot, error) {
	return f.slots, f.slotsErr
}

func (f *fakeScheduling) CreateBooking(_ context.Context, in scheduling.CreateBookingInput) (domain.Booking, error) {
	if f.createErr != nil {
		return domain.Booking{}, f.createErr
	}
	f.created = append(f.created, in)
	return domain.Booking{ID: uuid.New(), ClientID: in.ClientID, Status: domain.BookingPending}, nil
}

func (f *fakeScheduling) UpdateStatus(_ context.Context, id uuid.UUID, next domain.BookingStatus, _ domain.Actor) (domain.Booking, error) {
	return domain.Booking{ID: id, Status: next}, nil
}

func (f *fakeScheduling) DeleteBooking(context.Context, uuid.UUID, domain.Actor) error {
	return nil
}

func (f *fakeScheduling) ListForClient(context.Context, domain.Actor) ([]domain.Booking, error) {
	return []domain.Booking{}, nil
}

func (f *fakeScheduling) ListForProvider(context.Context, domain.Actor) ([]domain.Booking, error) {
	return []domain.Booking{}, nil
}

func (f *fakeScheduling) ListForCompany(context.Context, uuid.UUID, domain.Actor) ([]domain.Booking, error) {
	return []domain.Booking{}, nil
}

type fakeAvailability struct {
	created []availability.RuleInput
}

func (f *fakeAvailability) CreateRule(_ context.Context, in availability.RuleInput, _ domain.Actor) (domain.AvailabilityRule, error) {
	f.created = append(f.created, in)
	return domain.AvailabilityRule{ID: uuid.New(), ProviderID: in.ProviderID}, nil
}

func (f *fakeAvailability) GetRule(context.Context, uuid.UUID, domain.Actor) (domain.AvailabilityRule, error) {
	return domain.AvailabilityRule{}, fault.New(fault.KindNotFound, "availability rule not found")
}

func (f *fakeAvailability) ListForProvider(context.Context, uuid.UUID) ([]domain.AvailabilityRule, error) {
	return []domain.AvailabilityRule{}, nil
}

func (f *fakeAvailability) UpdateRule(_ context.Context, id uuid.UUID, in availability.RuleInput, _ domain.Actor) (domain.AvailabilityRule, error) {
	return domain.AvailabilityRule{ID: id}, nil
}

func (f *fakeAvailability) DeleteRule(context.Context, uuid.UUID, domain.Actor) error {
	return nil
}

type fakeLinker struct {
	exchanged []uuid.UUID
}

func (f *fakeLinker) AuthURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f *fakeLinker) ExchangeCode(_ context.Context, userID uuid.UUID, _ string) error {
	f.exchanged = append(f.exchanged, userID)
	return nil
}

type testEnv struct {
	server     *Server
	tokens     *auth.TokenIssuer
	accounts   *fakeAccounts
	scheduling *fakeScheduling
	rules      *fakeAvailability
	linker     *fakeLinker
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tokens:     auth.NewTokenIssuer("test-secret", time.Hour),
		accounts:   &fakeAccounts{},
		scheduling: &fakeScheduling{},
		rules:      &fakeAvailability{},
		linker:     &fakeLinker{},
	}
	env.server = NewServer(Deps{
		Accounts:     env.accounts,
		Scheduling:   env.scheduling,
		Availability: env.rules,
		Calendar:     env.linker,
		Tokens:       env.tokens,
	})
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string, as *domain.Actor) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		token, err := env.tokens.Issue(as.ID, as.Role)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.echo.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"correct horse","role":"client"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body)
	}
}

func TestRegisterConflictMapsTo409(t *testing.T) {
	env := newTestEnv()
	env.accounts.registerErr = fault.New(fault.KindConflict, "email is already registered")

	rec := env.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"correct horse","role":"client"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("got status %d, want 409", rec.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/api/bookings/client", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}

func TestFindSlotsEndpoint(t *testing.T) {
	env := newTestEnv()
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	env.scheduling.slots = []scheduling.Slot{{Start: start, End: start.Add(30 * time.Minute)}}
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	path := "/api/providers/" + uuid.NewString() + "/slots?serviceId=" + uuid.NewString() + "&date=2026-03-02"
	rec := env.do(t, http.MethodGet, path, "", actor)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body)
	}

	var slots []scheduling.Slot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(slots) != 1 || !slots[0].Start.Equal(start) {
		t.Fatalf("got %v", slots)
	}
}

func TestFindSlotsRejectsBadDate(t *testing.T) {
	env := newTestEnv()
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	path := "/api/providers/" + uuid.NewString() + "/slots?serviceId=" + uuid.NewString() + "&date=tomorrow"
	rec := env.do(t, http.MethodGet, path, "", actor)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestCreateBookingUsesActorAsClient(t *testing.T) {
	env := newTestEnv()
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	body := `{"providerId":"` + uuid.NewString() + `","serviceId":"` + uuid.NewString() +
		`","startTime":"2026-03-02T09:00:00Z"}`
	rec := env.do(t, http.MethodPost, "/api/bookings", body, actor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body)
	}
	if len(env.scheduling.created) != 1 || env.scheduling.created[0].ClientID != actor.ID {
		t.Fatalf("booking not created for the authenticated client")
	}
}

func TestCreateBookingConflictMapsTo409(t *testing.T) {
	env := newTestEnv()
	env.scheduling.createErr = fault.New(fault.KindConflict, "requested time slot conflicts with an existing booking")
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	body := `{"providerId":"` + uuid.NewString() + `","serviceId":"` + uuid.NewString() +
		`","startTime":"2026-03-02T09:00:00Z"}`
	rec := env.do(t, http.MethodPost, "/api/bookings", body, actor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("got status %d, want 409", rec.Code)
	}
}

func TestProviderCannotCreateBooking(t *testing.T) {
	env := newTestEnv()
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}

	body := `{"providerId":"` + uuid.NewString() + `","serviceId":"` + uuid.NewString() +
		`","startTime":"2026-03-02T09:00:00Z"}`
	rec := env.do(t, http.MethodPost, "/api/bookings", body, actor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rec.Code)
	}
}

func TestClientCannotCreateAvailabilityRule(t *testing.T) {
	env := newTestEnv()
	actor := &domain.Actor{ID: uuid.New(), Role: domain.RoleClient}

	path := "/api/providers/" + uuid.NewString() + "/availability"
	rec := env.do(t, http.MethodPost, path, `{"dayOfWeek":1,"startTime":"09:00","endTime":"17:00","isRecurring":true}`, actor)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", rec.Code)
	}
}

func TestGoogleCallbackLinksStateActor(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	state, err := env.tokens.Issue(userID, domain.RoleEmployee)
	if err != nil {
		t.Fatalf("issue state: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/calendar/google/callback?state="+state+"&code=abc", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body)
	}
	if len(env.linker.exchanged) != 1 || env.linker.exchanged[0] != userID {
		t.Fatalf("code was not exchanged for the state's user")
	}
}

func TestGoogleCallbackRejectsForgedState(t *testing.T) {
	env := newTestEnv()

	rec := env.do(t, http.MethodGet, "/calendar/google/callback?state=forged&code=abc", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401", rec.Code)
	}
}
