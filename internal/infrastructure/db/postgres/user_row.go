package postgres

import (
	"database/sql"

	"github.com/cercino/vointer/internal/domain"
)

// userRow mirrors the users table. Password hash and Google token columns
// are nullable: OAuth-only accounts have no hash, and most accounts never
// complete the Google consent flow.
type userRow struct {
	ID            string
	Name          string
	Company       string
	Email         string
	PasswordHash  sql.NullString
	EmailVerified bool

	GoogleAccessToken  sql.NullString
	GoogleRefreshToken sql.NullString
	GoogleTokenExpiry  sql.NullTime

	CreatedAt sql.NullTime
}

func (ur userRow) toDomain() domain.User {
	u := domain.User{
		ID:            ur.ID,
		Name:          ur.Name,
		Company:       ur.Company,
		Email:         ur.Email,
		PasswordHash:  ur.PasswordHash.String,
		EmailVerified: ur.EmailVerified,
	}
	if ur.GoogleAccessToken.Valid {
		u.Google = domain.GoogleTokens{
			AccessToken:  ur.GoogleAccessToken.String,
			RefreshToken: ur.GoogleRefreshToken.String,
		}
		if ur.GoogleTokenExpiry.Valid {
			u.Google.Expiry = ur.GoogleTokenExpiry.Time
		}
	}
	if ur.CreatedAt.Valid {
		u.CreatedAt = ur.CreatedAt.Time
	}
	return u
}
