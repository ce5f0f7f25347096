package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"agendaria/backend/internal/auth"
	"agendaria/backend/internal/domain"
)

const actorContextKey = "actor"

// requireAuth validates the bearer token and stores the actor on the request
// context for handlers.
func requireAuth(tokens *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			}
			actor, err := tokens.Parse(token)
			if err != nil {
				return writeError(c, err)
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) domain.Actor {
	actor, _ := c.Get(actorContextKey).(domain.Actor)
	return actor
}

// requireRole gates a route to the listed roles.
func requireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := actorFrom(c)
			for _, role := range roles {
				if actor.Role == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, errorResponse{Error: "insufficient role"})
		}
	}
}
