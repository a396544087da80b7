package http

import (
	"errors"
	"net/http"

	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/domain/model/order"
	"orderhub/internal/core/ports"
	"orderhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const (
	authFailedError   = "Authentication failed"
	authFailedMessage = "Request could not be authenticated"
)

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, AuthError{Error: authFailedError, Message: authFailedMessage})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

// respondError maps a use-case error onto the HTTP contract. Anything not
// recognised is logged and reported as a 500 without details.
func (s *Server) respondError(c echo.Context, err error, failure string) error {
	var transitionErr *order.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return c.JSON(http.StatusUnprocessableEntity, TransitionError{
			Code:    http.StatusUnprocessableEntity,
			Message: transitionErr.Message,
			Kind:    string(transitionErr.Kind),
		})
	case errs.IsInfrastructure(err):
		// checked before not-found: infrastructure errors may wrap any cause
	case errors.Is(err, errs.ErrObjectNotFound):
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: err.Error()})
	case errors.Is(err, commands.ErrTransitionConflict), errors.Is(err, ports.ErrConcurrentModification):
		return c.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Order was modified concurrently, retry the request",
		})
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return badRequest(c, err.Error())
	}

	s.logger.ErrorContext(c.Request().Context(), failure,
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: failure,
	})
}
