package domain

import "time"

// GoogleTokens is the delegated calendar grant stored for a user after the
// OAuth authorization-code exchange. An empty AccessToken means no grant.
type GoogleTokens struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Expired reports whether the stored access token needs a refresh before use.
func (t GoogleTokens) Expired(now time.Time) bool {
	return t.Expiry.IsZero() || !now.Before(t.Expiry)
}

type User struct {
	ID      string
	Name    string
	Company string
	Email   string

	// PasswordHash is empty for accounts created purely via Google OAuth.
	// Such accounts cannot log in locally or reset a password.
	PasswordHash string

	EmailVerified bool

	Google    GoogleTokens
	CreatedAt time.Time
}

// HasPassword reports whether local login / password reset is available.
func (u User) HasPassword() bool { return u.PasswordHash != "" }
