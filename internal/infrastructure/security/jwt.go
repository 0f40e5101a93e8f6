package security

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cercino/vointer/internal/domain"
)

// TTLs fixes the validity window per token purpose. The values are
// established once at startup and never change at runtime.
type TTLs struct {
	Access        time.Duration
	EmailVerify   time.Duration
	PasswordReset time.Duration
	OAuthState    time.Duration
}

// JWTIssuer signs and verifies HS256 tokens carrying a subject and purpose.
// Tokens survive a process restart only while the secret is stable.
type JWTIssuer struct {
	secret []byte
	issuer string
	ttls   TTLs

	now func() time.Time
}

func NewJWTIssuer(secret string, issuer string, ttls TTLs) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttls:   ttls,
		now:    time.Now,
	}
}

type purposeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *JWTIssuer) ttlFor(purpose domain.TokenPurpose) (time.Duration, bool) {
	switch purpose {
	case domain.PurposeAccess:
		return s.ttls.Access, true
	case domain.PurposeEmailVerify:
		return s.ttls.EmailVerify, true
	case domain.PurposePasswordReset:
		return s.ttls.PasswordReset, true
	case domain.PurposeOAuthState:
		return s.ttls.OAuthState, true
	default:
		return 0, false
	}
}

func (s *JWTIssuer) Issue(subject string, purpose domain.TokenPurpose) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", domain.ErrMissingField("subject")
	}
	ttl, ok := s.ttlFor(purpose)
	if !ok {
		return "", domain.ErrInvalidField("purpose", string(purpose))
	}

	now := s.now()
	claims := purposeClaims{
		Purpose: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Malformed, tampered, and
// expired tokens all fail with the same undifferentiated error; callers
// never learn which.
func (s *JWTIssuer) Verify(raw string) (domain.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &purposeClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.TokenClaims{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*purposeClaims)
	if !ok || !parsed.Valid {
		return domain.TokenClaims{}, domain.ErrTokenInvalid()
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.Purpose == "" {
		return domain.TokenClaims{}, domain.ErrTokenInvalid()
	}

	out := domain.TokenClaims{
		Subject: claims.Subject,
		Purpose: domain.TokenPurpose(claims.Purpose),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
