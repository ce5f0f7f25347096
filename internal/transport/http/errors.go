package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"agendaria/backend/internal/fault"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusForKind(kind fault.Kind) int {
	switch kind {
	case fault.KindInvalid:
		return http.StatusBadRequest
	case fault.KindUnauthenticated:
		return http.StatusUnauthorized
	case fault.KindForbidden:
		return http.StatusForbidden
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindConflict:
		return http.StatusConflict
	case fault.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps tagged domain errors to HTTP statuses. Untagged errors are
// reported as opaque 500s so internals never leak to clients.
func writeError(c echo.Context, err error) error {
	var fe *fault.Error
	if errors.As(err, &fe) {
		return c.JSON(statusForKind(fe.Kind()), errorResponse{Error: fe.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
