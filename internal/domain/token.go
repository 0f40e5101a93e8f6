package domain

import "time"

// TokenPurpose scopes a signed token to exactly one use. Verification must
// reject purpose mismatches: an email-verify token never grants login.
type TokenPurpose string

const (
	PurposeAccess        TokenPurpose = "access"
	PurposeEmailVerify   TokenPurpose = "email-verify"
	PurposePasswordReset TokenPurpose = "password-reset"

	// PurposeOAuthState binds the Google redirect/callback round trip to the
	// initiating, already-authenticated user.
	PurposeOAuthState TokenPurpose = "oauth-state"
)

// TokenClaims is what a verified token asserts. Tokens are ephemeral and
// never persisted; validity is purely time-bounded.
type TokenClaims struct {
	Subject   string
	Purpose   TokenPurpose
	IssuedAt  time.Time
	ExpiresAt time.Time
}
