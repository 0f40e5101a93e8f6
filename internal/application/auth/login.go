package auth

import (
	"context"
	"strings"

	"github.com/cercino/vointer/internal/domain"
)

type LoginResult struct {
	User        domain.User
	AccessToken string
}

// Login checks credentials and issues an access token. The account must
// have a verified email; correct credentials alone are not enough.
//
// Unknown accounts surface as not-found: this API serves a first-party
// frontend that shows distinct messages, and the disclosure policy is the
// same here as in the reset-request flow.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LoginResult{}, domain.ErrMissingField("email")
	}
	if strings.TrimSpace(password) == "" {
		return LoginResult{}, domain.ErrMissingField("password")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if !u.EmailVerified {
		return LoginResult{}, domain.ErrEmailNotVerified()
	}

	access, err := s.tokens.Issue(u.ID, domain.PurposeAccess)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, AccessToken: access}, nil
}
