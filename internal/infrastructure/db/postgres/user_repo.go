package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cercino/vointer/internal/domain"
)

const userColumns = `id, name, company, email, password_hash, email_verified,
google_access_token, google_refresh_token, google_token_expiry, created_at`

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

// Case-sensitivity policy is fixed at creation time: emails are stored and
// looked up lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Name,
		&ur.Company,
		&ur.Email,
		&ur.PasswordHash,
		&ur.EmailVerified,
		&ur.GoogleAccessToken,
		&ur.GoogleRefreshToken,
		&ur.GoogleTokenExpiry,
		&ur.CreatedAt,
	)
	return ur, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ---------- auth.UserRepo / calendar.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

// Create inserts the user and relies on the unique index on email: a
// duplicate comes back as a conflict, closing the lookup-then-insert race.
func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
INSERT INTO users (id, name, company, email, password_hash, email_verified)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + userColumns + `;
`
	var hash sql.NullString
	if u.PasswordHash != "" {
		hash = sql.NullString{String: u.PasswordHash, Valid: true}
	}

	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Name, u.Company, u.Email, hash, u.EmailVerified,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain(), nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if newHash == "" {
		return domain.ErrMissingField("password_hash")
	}

	const q = `
UPDATE users
SET password_hash = $2
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, newHash)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// SetEmailVerified is idempotent: verifying an already-verified user
// rewrites TRUE and succeeds.
func (r *UserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
UPDATE users
SET email_verified = TRUE
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *UserRepo) UpdateGoogleTokens(ctx context.Context, userID string, t domain.GoogleTokens) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if t.AccessToken == "" {
		return domain.ErrMissingField("access_token")
	}

	const q = `
UPDATE users
SET google_access_token = $2,
    google_refresh_token = $3,
    google_token_expiry = $4
WHERE id = $1;
`
	var refresh sql.NullString
	if t.RefreshToken != "" {
		refresh = sql.NullString{String: t.RefreshToken, Valid: true}
	}
	var expiry sql.NullTime
	if !t.Expiry.IsZero() {
		expiry = sql.NullTime{Time: t.Expiry, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, q, userID, t.AccessToken, refresh, expiry)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}
