package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/infrastructure/storage"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/jwt"
)

type fakeAuth struct {
	mu          sync.Mutex
	loginCalls  int
	loginErr    error
	result      api.LoginResult
	registered  []api.SignupInput
	registerErr error
	logouts     []string
	logoutErr   error
}

func (f *fakeAuth) Login(_ context.Context, identifier, _ string) (api.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return api.LoginResult{}, f.loginErr
	}
	res := f.result
	if res.User.Email == "" {
		res.User.Email = identifier
	}
	return res, nil
}

func (f *fakeAuth) Register(_ context.Context, in api.SignupInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, in)
	return f.registerErr
}

func (f *fakeAuth) Logout(_ context.Context, access, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, access)
	return f.logoutErr
}

// fakeTokens maps a token string to its claims; unknown tokens are invalid.
type fakeTokens map[string]jwt.Claims

func (f fakeTokens) Inspect(token string) (jwt.Claims, error) {
	c, ok := f[token]
	if !ok {
		return jwt.Claims{}, jwt.ErrTokenInvalid
	}
	if exp := c.Expiry(); !exp.IsZero() && time.Now().After(exp) {
		return c, jwt.ErrTokenExpired
	}
	return c, nil
}

func claimsExpiring(userID int64, exp time.Time) jwt.Claims {
	return jwt.Claims{
		UserID:           userID,
		TokenType:        jwt.TokenTypeAccess,
		RegisteredClaims: jwtlib.RegisteredClaims{ExpiresAt: jwtlib.NewNumericDate(exp)},
	}
}

type failingStore struct {
	storage.Store
	putErr    error
	deleteErr error
}

func (f *failingStore) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, key, value)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

func graduateLogin() *fakeAuth {
	return &fakeAuth{result: api.LoginResult{
		Access:  "access-1",
		Refresh: "refresh-1",
		User:    session.Identity{ID: 9, Email: "grad@example.com", Role: session.RoleGraduate},
	}}
}

func newTestSession(auth *fakeAuth, st storage.Store, tokens fakeTokens) (*SessionStore, *fakeNotifier) {
	n := &fakeNotifier{}
	return NewSessionStore(auth, st, tokens, n, quietLogger()), n
}

func storedSession(t *testing.T, st storage.Store) (session.Session, bool) {
	t.Helper()
	b, err := st.Get(context.Background(), sessionStorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return session.Session{}, false
	}
	require.NoError(t, err)
	var s session.Session
	require.NoError(t, json.Unmarshal(b, &s))
	return s, true
}

func TestSession_LoginPersistsAndNotifiesListeners(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	st := storage.NewMemory()
	s, _ := newTestSession(graduateLogin(), st, fakeTokens{"access-1": claimsExpiring(9, exp)})

	var order []string
	var seen session.Change
	s.OnChange("first", func(_ context.Context, c session.Change) {
		order = append(order, "first")
		seen = c
	})
	s.OnChange("second", func(context.Context, session.Change) { order = append(order, "second") })

	got, err := s.Login(context.Background(), " grad@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.UserID)
	assert.Equal(t, session.RoleGraduate, got.Role)
	assert.True(t, exp.Equal(got.ExpiresAt))

	assert.Equal(t, []string{"first", "second"}, order)
	require.NotNil(t, seen.Current)
	assert.Nil(t, seen.Previous)
	assert.Equal(t, "access-1", seen.Current.Token)

	persisted, ok := storedSession(t, st)
	require.True(t, ok)
	assert.Equal(t, "access-1", persisted.Token)
	assert.Equal(t, "refresh-1", persisted.RefreshToken)
	assert.Equal(t, session.StateAuthenticated, s.State())
	assert.Equal(t, "access-1", s.AccessToken())
}

func TestSession_LoginFailureUsesServerMessageVerbatim(t *testing.T) {
	auth := &fakeAuth{loginErr: apperror.FromResponse(401, []byte(`{"detail":"No active account found with the given credentials"}`))}
	s, _ := newTestSession(auth, storage.NewMemory(), nil)

	_, err := s.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", apperror.Message(err, ""))
	assert.True(t, apperror.IsUnauthenticated(err))
	assert.Equal(t, 1, auth.loginCalls)
	assert.Equal(t, session.StateUninitialized, s.State())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSession_LoginFailureWithoutMessageIsGeneric(t *testing.T) {
	auth := &fakeAuth{loginErr: apperror.Transient(apperror.MessageNetwork, errors.New("dial tcp: refused"))}
	s, _ := newTestSession(auth, storage.NewMemory(), nil)

	_, err := s.Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.Equal(t, MessageLoginFailed, apperror.Message(err, ""))
	assert.Equal(t, 1, auth.loginCalls)
}

func TestSession_LoginValidation(t *testing.T) {
	auth := graduateLogin()
	s, _ := newTestSession(auth, storage.NewMemory(), nil)

	_, err := s.Login(context.Background(), "  ", "pw")
	assert.True(t, apperror.IsValidation(err))
	assert.Zero(t, auth.loginCalls)
}

func TestSession_LoginPersistFailureKeepsAnonymous(t *testing.T) {
	st := &failingStore{Store: storage.NewMemory(), putErr: errors.New("disk full")}
	s, _ := newTestSession(graduateLogin(), st, nil)

	called := false
	s.OnChange("listener", func(context.Context, session.Change) { called = true })

	_, err := s.Login(context.Background(), "grad@example.com", "pw")
	require.Error(t, err)
	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, called)
}

func TestSession_LogoutClearsEvenWhenServerFails(t *testing.T) {
	auth := graduateLogin()
	auth.logoutErr = errors.New("backend down")
	st := storage.NewMemory()
	s, _ := newTestSession(auth, st, nil)

	_, err := s.Login(context.Background(), "grad@example.com", "pw")
	require.NoError(t, err)

	var change session.Change
	s.OnChange("listener", func(_ context.Context, c session.Change) { change = c })

	require.NoError(t, s.Logout(context.Background()))

	_, ok := s.Current()
	assert.False(t, ok)
	_, stored := storedSession(t, st)
	assert.False(t, stored)
	assert.Equal(t, session.StateAnonymous, s.State())
	require.NotNil(t, change.Previous)
	assert.Nil(t, change.Current)
	assert.Equal(t, []string{"access-1"}, auth.logouts)
	assert.True(t, apperror.IsUnauthenticated(s.RequireAuth()))
}

func TestSession_SignupRegistersThenLogsIn(t *testing.T) {
	auth := graduateLogin()
	s, _ := newTestSession(auth, storage.NewMemory(), nil)

	got, err := s.Signup(context.Background(), api.SignupInput{Email: "grad@example.com", Password: "pw", Role: "graduate"})
	require.NoError(t, err)
	assert.Equal(t, session.RoleGraduate, got.Role)
	require.Len(t, auth.registered, 1)
	assert.Equal(t, session.RoleGraduate, auth.registered[0].Role)
	assert.Equal(t, 1, auth.loginCalls)

	_, err = s.Signup(context.Background(), api.SignupInput{Email: "x@example.com", Password: "pw", Role: "admin"})
	assert.True(t, apperror.IsValidation(err))
	assert.Len(t, auth.registered, 1)
}

func TestSession_HydrateRestoresStoredSession(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	st := storage.NewMemory()
	b, _ := json.Marshal(session.Session{UserID: 3, Email: "r@example.com", Role: session.RoleRecruiter, Token: "tok"})
	require.NoError(t, st.Put(context.Background(), sessionStorageKey, b))

	s, _ := newTestSession(graduateLogin(), st, fakeTokens{"tok": claimsExpiring(3, exp)})
	hydrated := false
	s.OnChange("listener", func(_ context.Context, c session.Change) { hydrated = c.Current != nil })

	assert.Equal(t, session.StateAuthenticated, s.Hydrate(context.Background()))
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, session.RoleRecruiter, cur.Role)
	assert.True(t, exp.Equal(cur.ExpiresAt))
	assert.True(t, hydrated)
	assert.NoError(t, s.RequireRole(session.RoleRecruiter))
	assert.True(t, apperror.IsForbidden(s.RequireRole(session.RoleGraduate)))
}

func TestSession_HydrateDiscardsBadRecords(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	tokens := fakeTokens{"old": claimsExpiring(3, expired)}

	cases := map[string][]byte{
		"garbage":       []byte("{not json"),
		"missing token": mustJSON(t, session.Session{UserID: 3, Role: session.RoleGraduate}),
		"unknown role":  mustJSON(t, session.Session{UserID: 3, Role: "ADMIN", Token: "old"}),
		"invalid token": mustJSON(t, session.Session{UserID: 3, Role: session.RoleGraduate, Token: "forged"}),
		"expired":       mustJSON(t, session.Session{UserID: 3, Role: session.RoleGraduate, Token: "old"}),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			st := storage.NewMemory()
			require.NoError(t, st.Put(context.Background(), sessionStorageKey, raw))
			s, _ := newTestSession(graduateLogin(), st, tokens)

			assert.Equal(t, session.StateAnonymous, s.Hydrate(context.Background()))
			_, ok := s.Current()
			assert.False(t, ok)
			_, stored := storedSession(t, st)
			assert.False(t, stored)
		})
	}
}

func TestSession_HydrateKeepsExpiredTokenWithRefresh(t *testing.T) {
	st := storage.NewMemory()
	raw := mustJSON(t, session.Session{UserID: 3, Role: session.RoleGraduate, Token: "old", RefreshToken: "r"})
	require.NoError(t, st.Put(context.Background(), sessionStorageKey, raw))

	s, _ := newTestSession(graduateLogin(), st, fakeTokens{"old": claimsExpiring(3, time.Now().Add(-time.Minute))})
	assert.Equal(t, session.StateAuthenticated, s.Hydrate(context.Background()))
	assert.Equal(t, "r", s.RefreshToken())
}

func TestSession_HydrateWithNothingStored(t *testing.T) {
	s, _ := newTestSession(graduateLogin(), storage.NewMemory(), nil)
	assert.Equal(t, session.StateAnonymous, s.Hydrate(context.Background()))
}

func TestSession_ReplaceTokenPersists(t *testing.T) {
	st := storage.NewMemory()
	s, _ := newTestSession(graduateLogin(), st, nil)

	assert.ErrorIs(t, s.ReplaceToken(context.Background(), "x"), ErrNotAuthenticated)

	_, err := s.Login(context.Background(), "grad@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.ReplaceToken(context.Background(), "access-2"))

	assert.Equal(t, "access-2", s.AccessToken())
	persisted, _ := storedSession(t, st)
	assert.Equal(t, "access-2", persisted.Token)
	assert.Equal(t, "refresh-1", persisted.RefreshToken)
}

func TestSession_ExpireNotifiesOnce(t *testing.T) {
	s, n := newTestSession(graduateLogin(), storage.NewMemory(), nil)
	_, err := s.Login(context.Background(), "grad@example.com", "pw")
	require.NoError(t, err)

	changes := 0
	s.OnChange("listener", func(context.Context, session.Change) { changes++ })

	s.Expire(context.Background())
	s.Expire(context.Background())

	assert.Equal(t, 1, changes)
	notes := n.all()
	require.Len(t, notes, 1)
	assert.Equal(t, notify.LevelWarning, notes[0].Level)
	assert.Equal(t, apperror.MessageSessionExpired, notes[0].Message)
	assert.Equal(t, session.StateAnonymous, s.State())
}

func TestSession_RevalidateExpiresLapsedSession(t *testing.T) {
	auth := graduateLogin()
	auth.result.Refresh = ""
	s, _ := newTestSession(auth, storage.NewMemory(), fakeTokens{"access-1": claimsExpiring(9, time.Now().Add(time.Minute))})
	_, err := s.Login(context.Background(), "grad@example.com", "pw")
	require.NoError(t, err)

	s.Revalidate(context.Background())
	_, ok := s.Current()
	require.True(t, ok)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	s.Revalidate(context.Background())
	_, ok = s.Current()
	assert.False(t, ok)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
