package auth

import "time"

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	tokens   TokenIssuer
	used     UsedTokenStore
	notifier Notifier

	// URLs used to build links sent via the email-service
	verifyEmailBaseURL   string // e.g. https://frontend/verify?token=
	passwordResetBaseURL string // e.g. https://frontend/reset-password?token=

	now func() time.Time
}

type Config struct {
	VerifyEmailBaseURL   string
	PasswordResetBaseURL string
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	tokens TokenIssuer,
	used UsedTokenStore,
	notifier Notifier,
	cfg Config,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		used:     used,
		notifier: notifier,

		verifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,

		now: time.Now,
	}
}
