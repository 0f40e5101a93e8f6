package auth

import (
	"context"
	"strings"

	"github.com/cercino/vointer/internal/domain"
)

// ConfirmEmail flips the subject of a valid email-verify token to verified.
// Re-verifying an already-verified user is a no-op, not an error. On any
// token failure nothing changes and the caller only learns the token was
// invalid or expired.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if claims.Purpose != domain.PurposeEmailVerify {
		return domain.ErrTokenInvalid()
	}

	if err := s.users.SetEmailVerified(ctx, claims.Subject); err != nil {
		// A vanished subject reads the same as a bad token to the outside.
		if domain.Is(err, "user_not_found") {
			return domain.ErrTokenInvalid()
		}
		return err
	}
	return nil
}
