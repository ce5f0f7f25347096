package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"agendaria/backend/internal/store"
)

// GoogleSink pushes events to the provider's primary Google Calendar using
// per-user OAuth tokens stored in the directory.
type GoogleSink struct {
	oauth     *oauth2.Config
	directory store.DirectoryRepository
	log       *slog.Logger
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func NewGoogleSink(cfg GoogleConfig, directory store.DirectoryRepository, log *slog.Logger) *GoogleSink {
	if log == nil {
		log = slog.Default()
	}
	return &GoogleSink{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gcal.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		directory: directory,
		log:       log.With(slog.String("component", "google_calendar")),
	}
}

// AuthURL builds the consent URL for linking a user's Google account. The
// state parameter carries the user id and is verified on callback.
func (s *GoogleSink) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// ExchangeCode trades an OAuth callback code for tokens and persists them.
func (s *GoogleSink) ExchangeCode(ctx context.Context, userID uuid.UUID, code string) error {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange oauth code: %w", err)
	}
	return s.saveToken(ctx, userID, token)
}

func (s *GoogleSink) saveToken(ctx context.Context, userID uuid.UUID, token *oauth2.Token) error {
	var expiry *time.Time
	if !token.Expiry.IsZero() {
		t := token.Expiry.UTC()
		expiry = &t
	}
	return s.directory.SaveGoogleTokens(ctx, userID, token.AccessToken, token.RefreshToken, expiry)
}

func (s *GoogleSink) CreateEvent(ctx context.Context, providerID uuid.UUID, event Event) (string, error) {
	svc, err := s.eventsClient(ctx, providerID)
	if err != nil {
		return "", err
	}
	created, err := svc.Events.Insert("primary", toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

func (s *GoogleSink) UpdateEvent(ctx context.Context, providerID uuid.UUID, eventID string, event Event) error {
	svc, err := s.eventsClient(ctx, providerID)
	if err != nil {
		return err
	}
	if _, err := svc.Events.Update("primary", eventID, toGoogleEvent(event)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

func (s *GoogleSink) DeleteEvent(ctx context.Context, providerID uuid.UUID, eventID string) error {
	svc, err := s.eventsClient(ctx, providerID)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete("primary", eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

func (s *GoogleSink) eventsClient(ctx context.Context, providerID uuid.UUID) (*gcal.Service, error) {
	user, err := s.directory.GetUser(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotLinked
		}
		return nil, err
	}
	if user.GoogleRefreshToken == "" && user.GoogleAccessToken == "" {
		return nil, ErrNotLinked
	}

	token := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
	}
	if user.GoogleTokenExpiry != nil {
		token.Expiry = *user.GoogleTokenExpiry
	}

	source := &persistingTokenSource{
		sink:    s,
		userID:  providerID,
		ctx:     ctx,
		wrapped: s.oauth.TokenSource(ctx, token),
		last:    token,
	}
	return gcal.NewService(ctx, option.WithTokenSource(source))
}

// persistingTokenSource stores refreshed access tokens back to the directory
// so the next sync starts from a valid token.
type persistingTokenSource struct {
	sink    *GoogleSink
	userID  uuid.UUID
	ctx     context.Context
	wrapped oauth2.TokenSource
	last    *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.wrapped.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != p.last.AccessToken {
		if token.RefreshToken == "" {
			token.RefreshToken = p.last.RefreshToken
		}
		if err := p.sink.saveToken(p.ctx, p.userID, token); err != nil {
			p.sink.log.Warn("persisting refreshed google token failed",
				slog.Any("err", err),
				slog.String("user_id", p.userID.String()),
			)
		}
		p.last = token
	}
	return token, nil
}

func toGoogleEvent(event Event) *gcal.Event {
	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &gcal.EventDateTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: event.End.Format(time.RFC3339), TimeZone: "UTC"},
	}
}
