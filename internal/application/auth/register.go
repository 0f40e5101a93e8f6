package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cercino/vointer/internal/domain"
)

// Register creates an unverified account and hands a verification link to
// the notifier. There is no pre-insert existence probe: the store's unique
// constraint on email decides, so concurrent registrations cannot race.
func (s *Service) Register(ctx context.Context, name, email, password, company string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	company = strings.TrimSpace(company)

	switch {
	case name == "":
		return domain.User{}, domain.ErrMissingField("name")
	case email == "":
		return domain.User{}, domain.ErrMissingField("email")
	case password == "":
		return domain.User{}, domain.ErrMissingField("password")
	case company == "":
		return domain.User{}, domain.ErrMissingField("company")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:            uuid.NewString(),
		Name:          name,
		Company:       company,
		Email:         email,
		PasswordHash:  hash,
		EmailVerified: false,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	token, err := s.tokens.Issue(created.ID, domain.PurposeEmailVerify)
	if err != nil {
		return domain.User{}, err
	}

	evt := VerificationEvent{
		UserID: created.ID,
		Email:  created.Email,
		URL:    s.verifyEmailBaseURL + token,
	}
	if err := s.notifier.SendVerification(ctx, evt); err != nil {
		// Delivery failure fails the registration attempt; the caller sees
		// the upstream error, not a half-success.
		return domain.User{}, err
	}

	return created, nil
}
