package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

// Window queried by Availability: now until a week ahead.
const availabilityWindow = 7 * 24 * time.Hour

type Service struct {
	users  UserRepo
	tokens TokenIssuer
	google GoogleProvider

	now func() time.Time
}

func NewService(users UserRepo, tokens TokenIssuer, google GoogleProvider) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		google: google,
		now:    time.Now,
	}
}

// BeginAuthorization builds the consent redirect for an authenticated user.
// The state parameter is a signed token naming that user, so the callback
// can attribute the grant without trusting anything client-supplied. The
// URL always requests offline access and forced consent; Google reissues a
// refresh token even on repeat authorization.
func (s *Service) BeginAuthorization(userID string) (string, error) {
	state, err := s.tokens.Issue(userID, domain.PurposeOAuthState)
	if err != nil {
		return "", err
	}
	return s.google.AuthURL(state), nil
}

// CompleteAuthorization verifies the signed state, exchanges the code, and
// persists the resulting tokens on the initiating user. The raw provider
// tokens are never handed back to the client.
func (s *Service) CompleteAuthorization(ctx context.Context, state, code string) (string, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return "", domain.ErrMissingField("state")
	}
	if strings.TrimSpace(code) == "" {
		return "", domain.ErrMissingField("code")
	}

	claims, err := s.tokens.Verify(state)
	if err != nil {
		return "", domain.ErrTokenRejected()
	}
	if claims.Purpose != domain.PurposeOAuthState {
		return "", domain.ErrTokenRejected()
	}

	toks, err := s.google.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdateGoogleTokens(ctx, claims.Subject, toks); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Availability returns the user's busy intervals for the coming week. The
// stored access token is refreshed first if its expiry has passed, and the
// refreshed token is persisted before querying.
func (s *Service) Availability(ctx context.Context, userID string) ([]BusyInterval, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	toks := u.Google
	if toks.AccessToken == "" {
		return nil, domain.ErrNoGoogleGrant()
	}

	if toks.Expired(s.now()) {
		if toks.RefreshToken == "" {
			return nil, domain.ErrNoGoogleGrant()
		}
		fresh, err := s.google.Refresh(ctx, toks.RefreshToken)
		if err != nil {
			return nil, err
		}
		// Google omits the refresh token on refresh responses; keep ours.
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = toks.RefreshToken
		}
		if err := s.users.UpdateGoogleTokens(ctx, u.ID, fresh); err != nil {
			return nil, err
		}
		toks = fresh
	}

	from := s.now()
	return s.google.FreeBusy(ctx, toks.AccessToken, from, from.Add(availabilityWindow))
}
