package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

// TokenValidator validates a bearer token and yields the caller principal.
// Authentication is the host's concern; this middleware only unwraps what the
// host already signed.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// caller principal into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}
			caller, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"invalid or missing token"}`))
}
