package calendar

import (
	"context"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

// UserRepo is the slice of user persistence the calendar flows need.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	UpdateGoogleTokens(ctx context.Context, userID string, t domain.GoogleTokens) error
}

// TokenIssuer signs/verifies the oauth-state token that carries the
// initiating user through the redirect round trip.
type TokenIssuer interface {
	Issue(subject string, purpose domain.TokenPurpose) (string, error)
	Verify(raw string) (domain.TokenClaims, error)
}

// GoogleProvider is the third-party side: authorization-code grant plus
// the read-only free/busy query.
type GoogleProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (domain.GoogleTokens, error)
	Refresh(ctx context.Context, refreshToken string) (domain.GoogleTokens, error)
	FreeBusy(ctx context.Context, accessToken string, from, to time.Time) ([]BusyInterval, error)
}

// TimeZone is the zone all free/busy queries and answers are expressed in.
const TimeZone = "Europe/Stockholm"

// BusyInterval is one occupied slot from the provider's free/busy answer.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
