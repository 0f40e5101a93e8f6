package auth

import (
	"context"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the flows need, not HOW it's stored.
The store enforces the unique constraint on email; Create surfaces a
duplicate as a conflict instead of probing first (no check-then-act window).
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Atomic per-record partial updates
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
	UpdateGoogleTokens(ctx context.Context, userID string, t domain.GoogleTokens) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt. Verify is boolean on purpose: a missing stored hash is
an ordinary mismatch, never an error.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

/*
TokenIssuer
-----------
Signs and verifies purpose-scoped tokens. TTL per purpose is fixed inside
the issuer. Verify fails with one undifferentiated token error.
*/
type TokenIssuer interface {
	Issue(subject string, purpose domain.TokenPurpose) (string, error)
	Verify(raw string) (domain.TokenClaims, error)
}

/*
UsedTokenStore
--------------
Single-use guard for password-reset tokens. A consumed token is recorded
for the remainder of its validity window; replaying it fails.
*/
type UsedTokenStore interface {
	// Consume marks the token as used and reports whether this was the
	// first use. ttl bounds how long the used-marker must survive.
	Consume(ctx context.Context, purpose domain.TokenPurpose, token string, ttl time.Duration) (bool, error)
}

/*
Notifier
--------
Publishes notification events; the email-service consumes them and sends
the mail. Delivery failure propagates as a failed registration or reset
request; nothing is retried here.
*/
type Notifier interface {
	SendVerification(ctx context.Context, evt VerificationEvent) error
	SendReset(ctx context.Context, evt PasswordResetEvent) error
}

type VerificationEvent struct {
	UserID string
	Email  string
	URL    string
}

type PasswordResetEvent struct {
	UserID string
	Email  string
	URL    string
}
