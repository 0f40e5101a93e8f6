package middleware

import (
	"net/http"
	"strings"

	"github.com/cercino/vointer/internal/domain"
)

type TokenVerifier interface {
	Verify(raw string) (domain.TokenClaims, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <access_token> and injects the
// token subject into the request context.
//
// A missing header or wrong scheme is an authentication failure (401):
// the caller never presented a credential. A credential that is present
// but does not verify as a live access token is rejected (403).
func Auth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				writeErr(w, r, domain.ErrTokenRejected())
				return
			}
			if claims.Purpose != domain.PurposeAccess {
				writeErr(w, r, domain.ErrTokenRejected())
				return
			}
			if strings.TrimSpace(claims.Subject) == "" {
				writeErr(w, r, domain.ErrTokenRejected())
				return
			}

			ctx := WithUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
