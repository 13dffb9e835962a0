package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mentorlink/booking-service/internal/interfaces/rest"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFrom extracts the authenticated user's id set by the Auth
// middleware.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// Auth validates the Bearer token as an HMAC-signed JWT issued by the
// accounts service and puts the subject's user id on the context. The
// webhook route is not behind this; the provider authenticates with a
// signature header instead.
func Auth(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.Fields(auth)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeUnauthorized(w, "invalid authorization format")
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Debug("token rejected", "error", err)
				writeUnauthorized(w, "invalid token")
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				writeUnauthorized(w, "invalid token subject")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(rest.ErrorResponse{
		Success: false,
		Error: rest.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
