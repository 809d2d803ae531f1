package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware attaches the identity from an "Authorization: Bearer" header.
// Requests without the header pass through anonymously; a header that does
// not validate is rejected.
func Middleware(issuer *Issuer, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				reject(w, "invalid_token", "authorization header must be a bearer token")
				return
			}

			id, err := issuer.Validate(raw)
			if err != nil {
				log.Debug("rejected token", zap.Error(err))
				if errors.Is(err, ErrTokenExpired) {
					reject(w, "token_expired", "token expired")
					return
				}
				reject(w, "invalid_token", "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func reject(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
