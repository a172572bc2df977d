package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ledgerdesk/ledgerdesk/infrastructure/service/logger"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID reuses an incoming X-Correlation-ID or mints one and echoes
// it on the response. The id and the client IP are stored in the request
// context for the logger and the use cases.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, cid)

		ctx := logger.ContextWithCorrelationID(r.Context(), cid)
		ctx = logger.ContextWithClientIP(ctx, ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
