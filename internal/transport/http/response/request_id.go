package response

import (
	"net/http"

	appctx "github.com/cercino/vointer/internal/pkg/context"
)

// RequestIDFromRequest extracts the request id placed by the middleware.
func RequestIDFromRequest(r *http.Request) string {
	if id, ok := appctx.RequestID(r.Context()); ok {
		return id
	}
	return ""
}
