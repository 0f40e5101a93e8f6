package http_handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cercino/vointer/internal/application/auth"
	"github.com/cercino/vointer/internal/application/calendar"
	"github.com/cercino/vointer/internal/domain"
	"github.com/cercino/vointer/internal/infrastructure/memory"
	"github.com/cercino/vointer/internal/infrastructure/security"
)

// memUserRepo satisfies both the auth and calendar repo ports.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (m *memUserRepo) add(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (m *memUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return u, nil
}

func (m *memUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	m.byID[userID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerified = true
	m.byID[userID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) UpdateGoogleTokens(ctx context.Context, userID string, t domain.GoogleTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Google = t
	m.byID[userID] = u
	m.byEmail[u.Email] = u
	return nil
}

type captureNotifier struct {
	mu            sync.Mutex
	verifications []auth.VerificationEvent
	resets        []auth.PasswordResetEvent
}

func (c *captureNotifier) SendVerification(ctx context.Context, evt auth.VerificationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifications = append(c.verifications, evt)
	return nil
}

func (c *captureNotifier) SendReset(ctx context.Context, evt auth.PasswordResetEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets = append(c.resets, evt)
	return nil
}

type stubGoogle struct {
	authURL      string
	exchangeToks domain.GoogleTokens
	exchangeErr  error
	busy         []calendar.BusyInterval
	busyErr      error
}

func (s *stubGoogle) AuthURL(state string) string {
	return s.authURL + "?state=" + state
}

func (s *stubGoogle) Exchange(ctx context.Context, code string) (domain.GoogleTokens, error) {
	if s.exchangeErr != nil {
		return domain.GoogleTokens{}, s.exchangeErr
	}
	return s.exchangeToks, nil
}

func (s *stubGoogle) Refresh(ctx context.Context, refreshToken string) (domain.GoogleTokens, error) {
	return s.exchangeToks, nil
}

func (s *stubGoogle) FreeBusy(ctx context.Context, accessToken string, from, to time.Time) ([]calendar.BusyInterval, error) {
	if s.busyErr != nil {
		return nil, s.busyErr
	}
	return s.busy, nil
}

type testEnv struct {
	users    *memUserRepo
	issuer   *security.JWTIssuer
	notifier *captureNotifier
	google   *stubGoogle

	authSvc *auth.Service
	calSvc  *calendar.Service

	authH *AuthHandler
	calH  *CalendarHandler
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	issuer := security.NewJWTIssuer("test-secret", "vointer", security.TTLs{
		Access:        time.Hour,
		EmailVerify:   time.Hour,
		PasswordReset: 15 * time.Minute,
		OAuthState:    10 * time.Minute,
	})
	notifier := &captureNotifier{}
	google := &stubGoogle{authURL: "https://accounts.google.test/auth"}

	hasher := security.NewBcryptHasher(4)
	authSvc := auth.NewService(users, hasher, issuer, memory.NewUsedTokenStore(), notifier, auth.Config{
		VerifyEmailBaseURL:   "https://app.test/verify?token=",
		PasswordResetBaseURL: "https://app.test/reset-password?token=",
	})
	calSvc := calendar.NewService(users, issuer, google)

	return &testEnv{
		users:    users,
		issuer:   issuer,
		notifier: notifier,
		google:   google,
		authSvc:  authSvc,
		calSvc:   calSvc,
		authH:    NewAuthHandler(authSvc),
		calH:     NewCalendarHandler(calSvc),
	}
}

func decodeErrCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error.Code
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}
