package transport

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/domain"
	"github.com/freebook/backend/internal/observability"
)

// Error maps a service error onto the JSON error envelope. Unknown errors are
// logged and reported without detail.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	status, code, message := Classify(err)
	if status >= http.StatusInternalServerError {
		observability.GetLogger(ctx).Error("internal_error", zap.Error(err))
	}
	WriteError(w, status, code, message)
}

// Classify returns the status, code and client message for err.
func Classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_argument", err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized", "invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "authentication failed"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden", "access denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found", notFoundMessage(err)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict", conflictMessage(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", "request timed out"
	default:
		return http.StatusInternalServerError, "internal_error", "an unexpected error occurred"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		return domain.ErrPostNotFound.Error()
	case errors.Is(err, domain.ErrProfileNotFound):
		return domain.ErrProfileNotFound.Error()
	}
	return domain.ErrNotFound.Error()
}

func conflictMessage(err error) string {
	for _, known := range []error{
		domain.ErrEmailConflict,
		domain.ErrAlreadyLiked,
		domain.ErrNotLiked,
		domain.ErrAlreadySaved,
		domain.ErrNotSaved,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return domain.ErrConflict.Error()
}
