package auth

import (
	"context"
	"strings"

	"github.com/cercino/vointer/internal/domain"
)

// RequestReset issues a short-lived reset token and hands the link to the
// notifier. Accounts without a local password (created purely via Google
// OAuth) cannot reset: the flow fails before any token is issued and the
// notifier is never contacted.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if !u.HasPassword() {
		return domain.ErrResetUnavailable()
	}

	token, err := s.tokens.Issue(u.ID, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	evt := PasswordResetEvent{
		UserID: u.ID,
		Email:  u.Email,
		URL:    s.passwordResetBaseURL + token,
	}
	return s.notifier.SendReset(ctx, evt)
}

// Reset consumes a reset token and overwrites the subject's password hash
// unconditionally. Each token is single-use: the consumed marker outlives
// the token's own validity window, so a replayed token reads as invalid.
func (s *Service) Reset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if strings.TrimSpace(newPassword) == "" {
		return domain.ErrMissingField("password")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if claims.Purpose != domain.PurposePasswordReset {
		return domain.ErrTokenInvalid()
	}

	remaining := claims.ExpiresAt.Sub(s.now())
	first, err := s.used.Consume(ctx, domain.PurposePasswordReset, token, remaining)
	if err != nil {
		return err
	}
	if !first {
		return domain.ErrTokenInvalid()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePasswordHash(ctx, claims.Subject, hash)
}
