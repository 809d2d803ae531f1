package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/api-gateway/internal/auth"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
)

const (
	CartCookieName = "cart_session"
	cartCookieTTL  = 90 * 24 * time.Hour
)

type ctxKey int

const cartKeyCtx ctxKey = iota

// RequestIDMiddleware echoes chi's request id back to the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// CartSessionMiddleware makes sure every request carries a cart key, issuing
// the cart_session cookie on first use.
func CartSessionMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if c, err := r.Cookie(CartCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					key = c.Value
				}
			}
			if key == "" {
				key = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartCookieName,
					Value:    key,
					Path:     "/",
					MaxAge:   int(cartCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), cartKeyCtx, key)))
		})
	}
}

func cartKey(ctx context.Context) string {
	key, _ := ctx.Value(cartKeyCtx).(string)
	return key
}

// callContext bounds an upstream call and propagates request metadata.
func callContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	md := []string{"request-id", middleware.GetReqID(r.Context())}
	if id := auth.FromContext(r.Context()); id != nil {
		md = append(md, "user-id", id.UserID)
	}
	return metadata.AppendToOutgoingContext(ctx, md...), cancel
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.WithContext(r.Context(), log).Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
