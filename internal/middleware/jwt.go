package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/freebook/backend/internal/observability"
	"github.com/freebook/backend/internal/transport"
)

// SubjectParser verifies a token and returns its subject.
type SubjectParser interface {
	Subject(token string) (string, error)
}

// JWT rejects requests without a valid bearer token and stores the token
// subject in the request context.
func JWT(tokens SubjectParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			sub, err := tokens.Subject(tokenString)
			if err != nil {
				observability.GetLogger(r.Context()).Debug("jwt_rejected", zap.Error(err))
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			ctx := InjectSubject(r.Context(), sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing token")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid token format")
	}

	return parts[1], nil
}
