// internal/infra/httpapi/middleware.go
package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ctxKey string

// CtxUserID carries the authenticated learner id extracted by IdentityMiddleware.
const CtxUserID ctxKey = "user_id"

// LoggingMiddleware logs every request at debug level.
func LoggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			}).Debug("request")
			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware converts panics into 500 responses.
func RecoveryMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.WithField("panic", err).Error("handler panicked")
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityMiddleware extracts the authenticated user id set by the upstream
// identity proxy. Session validation itself is delegated; this layer only
// requires that the proxy attached an identity.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			http.Error(w, "Missing identity", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TriggerAuthMiddleware guards the delivery trigger endpoint with a pre-shared
// token. An empty configured secret is a server misconfiguration and fails
// closed with 500; a missing or mismatched supplied token is 401. Nothing is
// processed on either failure.
func TriggerAuthMiddleware(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "Trigger secret not configured", http.StatusInternalServerError)
				return
			}
			supplied := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if supplied == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(secret)) != 1 {
				http.Error(w, "Invalid trigger token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserID returns the authenticated user id stored by IdentityMiddleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}
