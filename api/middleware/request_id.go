package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/api/validators"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

const (
	correlationIDHeader = "X-Correlation-Id"
	maxRequestIDLen     = 64
)

// RequestID accepts a well-formed upstream id (X-Request-Id, then
// X-Correlation-Id) or mints a UUIDv7, echoes it on the response and stores it
// in the context for logging and audit metadata.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := incomingRequestID(r)
			if reqID == "" {
				reqID = newRequestID()
			}

			w.Header().Set(responses.RequestIDHeader, reqID)

			ctx := context.WithValue(r.Context(), ctxRequestID, reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func incomingRequestID(r *http.Request) string {
	for _, h := range []string{responses.RequestIDHeader, correlationIDHeader} {
		if id := validators.SanitizeToken(r.Header.Get(h), maxRequestIDLen); id != "" {
			return id
		}
	}
	return ""
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
