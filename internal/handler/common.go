package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/chiragcj27/chariot-sub001/internal/logger"
	"github.com/chiragcj27/chariot-sub001/internal/middleware"
	"github.com/chiragcj27/chariot-sub001/internal/repository"
	"github.com/chiragcj27/chariot-sub001/internal/service"
	"github.com/chiragcj27/chariot-sub001/internal/trust"
)

// errUnauthenticated is returned by getUserID when JWTAuth did not run.
var errUnauthenticated = errors.New("missing authenticated user")

// getUserID returns the authenticated admin or seller id.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, errUnauthenticated
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func fail(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, http.StatusBadRequest, "bad_request", msg)
}

// writeError maps lifecycle errors onto HTTP statuses.  Precondition
// failures keep their message so the admin sees which rule blocked them.
func writeError(c echo.Context, err error) error {
	var cerr *service.CascadeError
	switch {
	case errors.Is(err, errUnauthenticated):
		return fail(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, trust.ErrValidation):
		return fail(c, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, trust.ErrInvalidTransition):
		return fail(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, service.ErrConcurrentModification):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     err.Error(),
			"code":      "concurrent_modification",
			"retryable": true,
		})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":              err.Error(),
			"code":               "cascade_incomplete",
			"failed_product_ids": cerr.FailedProductIDs,
		})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fail(c, http.StatusServiceUnavailable, "timeout", "request timed out")
	default:
		logger.FromEcho(c).Error("unhandled lifecycle error", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
