package middleware

import (
	"net/http"

	"github.com/google/uuid"

	appctx "github.com/cercino/vointer/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID assigns every request an id, honoring one supplied by an
// upstream proxy. The id travels in the context and the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		ctx := appctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
