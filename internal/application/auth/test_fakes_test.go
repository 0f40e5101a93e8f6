package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cercino/vointer/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr     error
	getByEmailErr  error
	createErr      error
	updatePwdErr   error
	setVerifiedErr error

	// record calls
	updatedPwd  []struct{ id, hash string }
	verifiedIDs []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) add(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
	return nil
}

func (f *fakeUserRepo) SetEmailVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifiedErr != nil {
		return f.setVerifiedErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.EmailVerified = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.verifiedIDs = append(f.verifiedIDs, userID)
	return nil
}

func (f *fakeUserRepo) UpdateGoogleTokens(ctx context.Context, userID string, t domain.GoogleTokens) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Google = t
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

type fakeHasher struct {
	hashFn func(pw string) (string, error)
}

func (f *fakeHasher) Hash(password string) (string, error) {
	if f.hashFn != nil {
		return f.hashFn(password)
	}
	return "hash(" + password + ")", nil
}

func (f *fakeHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return hash == "hash("+password+")"
}

// fakeIssuer issues transparent tokens so tests can assert on purpose and
// subject without real signing.
type fakeIssuer struct {
	mu sync.Mutex

	issueErr  error
	verifyErr error

	seq    int
	claims map[string]domain.TokenClaims

	now time.Time
	ttl time.Duration
}

func newFakeIssuer() *fakeIssuer {
	return &fakeIssuer{
		claims: map[string]domain.TokenClaims{},
		now:    time.Now(),
		ttl:    15 * time.Minute,
	}
}

func (f *fakeIssuer) Issue(subject string, purpose domain.TokenPurpose) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.seq++
	tok := fmt.Sprintf("tok-%d-%s", f.seq, purpose)
	f.claims[tok] = domain.TokenClaims{
		Subject:   subject,
		Purpose:   purpose,
		IssuedAt:  f.now,
		ExpiresAt: f.now.Add(f.ttl),
	}
	return tok, nil
}

func (f *fakeIssuer) Verify(raw string) (domain.TokenClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.verifyErr != nil {
		return domain.TokenClaims{}, f.verifyErr
	}
	c, ok := f.claims[raw]
	if !ok {
		return domain.TokenClaims{}, domain.ErrTokenInvalid()
	}
	return c, nil
}

type fakeUsedStore struct {
	mu sync.Mutex

	consumeErr error
	seen       map[string]time.Duration
}

func newFakeUsedStore() *fakeUsedStore {
	return &fakeUsedStore{seen: map[string]time.Duration{}}
}

func (f *fakeUsedStore) Consume(ctx context.Context, purpose domain.TokenPurpose, token string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	key := string(purpose) + ":" + token
	if _, ok := f.seen[key]; ok {
		return false, nil
	}
	f.seen[key] = ttl
	return true, nil
}

type fakeNotifier struct {
	mu sync.Mutex

	verifyErr error
	resetErr  error

	verifications []VerificationEvent
	resets        []PasswordResetEvent
}

func (f *fakeNotifier) SendVerification(ctx context.Context, evt VerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.verifications = append(f.verifications, evt)
	return nil
}

func (f *fakeNotifier) SendReset(ctx context.Context, evt PasswordResetEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.resetErr != nil {
		return f.resetErr
	}
	f.resets = append(f.resets, evt)
	return nil
}

/*
Wiring helper
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeIssuer, *fakeUsedStore, *fakeNotifier) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	issuer := newFakeIssuer()
	used := newFakeUsedStore()
	notifier := &fakeNotifier{}

	svc := NewService(users, hasher, issuer, used, notifier, Config{
		VerifyEmailBaseURL:   "https://app.test/verify?token=",
		PasswordResetBaseURL: "https://app.test/reset-password?token=",
	})
	return svc, users, hasher, issuer, used, notifier
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
