package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/infrastructure/storage"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/jwt"
)

const (
	sessionStorageKey = "session"
	logoutTimeout     = 5 * time.Second

	MessageLoginFailed = "Login failed. Please check your credentials and try again."
)

var ErrNotAuthenticated = errors.New("store: no active session")

type AuthAPI interface {
	Login(ctx context.Context, identifier, secret string) (api.LoginResult, error)
	Register(ctx context.Context, in api.SignupInput) error
	Logout(ctx context.Context, access, refresh string) error
}

type SessionListener func(ctx context.Context, change session.Change)

type namedListener struct {
	name string
	fn   SessionListener
}

// SessionStore owns the process-wide identity and credential. Memory and durable storage are
// always written under the same lock so neither is observable without the other.
type SessionStore struct {
	auth     AuthAPI
	storage  storage.Store
	tokens   jwt.Service
	notifier notify.Notifier
	logger   *log.Logger

	mu      sync.RWMutex
	state   session.State
	current *session.Session

	lmu       sync.Mutex
	listeners []namedListener

	now func() time.Time
}

func NewSessionStore(auth AuthAPI, st storage.Store, tokens jwt.Service, notifier notify.Notifier, logger *log.Logger) *SessionStore {
	if logger == nil {
		logger = log.Default()
	}
	if st == nil {
		st = storage.NewMemory()
	}
	if tokens == nil {
		tokens = jwt.NewInspector(0)
	}
	return &SessionStore{
		auth:     auth,
		storage:  st,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		state:    session.StateUninitialized,
		now:      time.Now,
	}
}

// OnChange registers fn to run after every login, logout and expiry, in registration order.
func (s *SessionStore) OnChange(name string, fn SessionListener) {
	if fn == nil {
		return
	}
	s.lmu.Lock()
	s.listeners = append(s.listeners, namedListener{name: name, fn: fn})
	s.lmu.Unlock()
}

func (s *SessionStore) emit(ctx context.Context, change session.Change) {
	s.lmu.Lock()
	ls := make([]namedListener, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.Unlock()

	for _, l := range ls {
		start := time.Now()
		l.fn(ctx, change)
		s.logger.Printf("store=session op=invalidate listener=%s latency=%s", l.name, time.Since(start))
	}
}

// Hydrate restores the session persisted by a previous process. It completes before returning so
// dependent stores never observe the pre-hydration state. An unreadable or expired record
// hydrates as anonymous and is removed.
func (s *SessionStore) Hydrate(ctx context.Context) session.State {
	s.mu.Lock()
	s.state = session.StateHydrating

	restored, err := s.readStored(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("store=session op=hydrate status=discarded err=%v", err)
			_ = s.storage.Delete(ctx, sessionStorageKey)
		}
		s.current = nil
		s.state = session.StateAnonymous
		s.mu.Unlock()
		return session.StateAnonymous
	}

	s.current = restored
	s.state = session.StateAuthenticated
	s.mu.Unlock()

	s.logger.Printf("store=session op=hydrate status=authenticated user_id=%d role=%s", restored.UserID, restored.Role)
	cur := *restored
	s.emit(ctx, session.Change{Current: &cur})
	return session.StateAuthenticated
}

func (s *SessionStore) readStored(ctx context.Context) (*session.Session, error) {
	b, err := s.storage.Get(ctx, sessionStorageKey)
	if err != nil {
		return nil, err
	}
	var stored session.Session
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, err
	}
	if strings.TrimSpace(stored.Token) == "" || !stored.Role.Valid() {
		return nil, errors.New("incomplete session record")
	}

	claims, err := s.tokens.Inspect(stored.Token)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		if stored.RefreshToken == "" {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	if exp := claims.Expiry(); !exp.IsZero() {
		stored.ExpiresAt = exp
	}
	return &stored, nil
}

// persist writes next to durable storage and then to memory. Callers hold s.mu.
func (s *SessionStore) persist(ctx context.Context, next *session.Session) error {
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := s.storage.Put(ctx, sessionStorageKey, b); err != nil {
		return err
	}
	s.current = next
	s.state = session.StateAuthenticated
	return nil
}

func (s *SessionStore) Login(ctx context.Context, identifier, secret string) (session.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return session.Session{}, apperror.Validation("Email and password are required.", nil)
	}

	res, err := s.auth.Login(ctx, identifier, secret)
	if err != nil {
		s.logger.Printf("store=session op=login status=error err=%v", err)
		msg := apperror.ServerMessage(err)
		if msg == "" {
			msg = MessageLoginFailed
		}
		status := http.StatusUnauthorized
		var ae *apperror.Error
		if errors.As(err, &ae) && ae.StatusCode != 0 {
			status = ae.StatusCode
		}
		return session.Session{}, apperror.New(apperror.KindOf(err), status, msg, err)
	}

	next := &session.Session{
		UserID:       res.User.ID,
		Email:        res.User.Email,
		Role:         res.User.Role,
		Phone:        res.User.Phone,
		Token:        res.Access,
		RefreshToken: res.Refresh,
	}
	if claims, err := s.tokens.Inspect(res.Access); err == nil || errors.Is(err, jwt.ErrTokenExpired) {
		next.ExpiresAt = claims.Expiry()
		if next.UserID == 0 {
			next.UserID = claims.UserID
		}
	}
	if next.Email == "" {
		next.Email = identifier
	}

	s.mu.Lock()
	prev := s.current
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		s.logger.Printf("store=session op=login status=error step=persist err=%v", err)
		return session.Session{}, apperror.Transient(MessageLoginFailed, err)
	}
	s.mu.Unlock()

	s.logger.Printf("store=session op=login status=ok user_id=%d role=%s", next.UserID, next.Role)
	cur := *next
	s.emit(ctx, session.Change{Previous: prev, Current: &cur})
	return cur, nil
}

// Signup registers an account and then logs in with the same credentials.
func (s *SessionStore) Signup(ctx context.Context, in api.SignupInput) (session.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return session.Session{}, apperror.Validation("Email and password are required.", nil)
	}
	if role, ok := session.ParseRole(string(in.Role)); ok {
		in.Role = role
	} else {
		return session.Session{}, apperror.Validation("role: Select either GRADUATE or RECRUITER.", nil)
	}

	if err := s.auth.Register(ctx, in); err != nil {
		s.logger.Printf("store=session op=signup status=error err=%v", err)
		return session.Session{}, err
	}
	return s.Login(ctx, in.Email, in.Password)
}

// Logout clears memory and durable storage before asking the server to invalidate the refresh
// token. The server call is best effort and its failure is only logged.
func (s *SessionStore) Logout(ctx context.Context) error {
	prev, clearErr := s.clear(ctx)
	if clearErr != nil {
		s.logger.Printf("store=session op=logout status=error step=storage err=%v", clearErr)
	}
	s.emit(ctx, session.Change{Previous: prev})

	if prev != nil && s.auth != nil {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		if err := s.auth.Logout(lctx, prev.Token, prev.RefreshToken); err != nil {
			s.logger.Printf("store=session op=logout status=server_error err=%v", err)
		}
	}
	s.logger.Printf("store=session op=logout status=ok")
	return clearErr
}

// Expire destroys the session after the backend refused the credential and refresh could not
// recover it. It is a no-op when no session is live.
func (s *SessionStore) Expire(ctx context.Context) {
	s.mu.RLock()
	live := s.current != nil
	s.mu.RUnlock()
	if !live {
		return
	}

	prev, err := s.clear(ctx)
	if prev == nil {
		return
	}
	if err != nil {
		s.logger.Printf("store=session op=expire status=error step=storage err=%v", err)
	}
	s.logger.Printf("store=session op=expire user_id=%d", prev.UserID)
	if s.notifier != nil {
		s.notifier.Notify(notify.LevelWarning, "Session expired", apperror.MessageSessionExpired)
	}
	s.emit(ctx, session.Change{Previous: prev})
}

func (s *SessionStore) clear(ctx context.Context) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.current
	s.current = nil
	s.state = session.StateAnonymous
	return prev, s.storage.Delete(context.WithoutCancel(ctx), sessionStorageKey)
}

// ReplaceToken installs a refreshed access token for the live session.
func (s *SessionStore) ReplaceToken(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotAuthenticated
	}
	next := *s.current
	next.Token = access
	if claims, err := s.tokens.Inspect(access); err == nil {
		next.ExpiresAt = claims.Expiry()
	}
	return s.persist(ctx, &next)
}

// Revalidate expires a session whose access token has lapsed and which holds no refresh token.
func (s *SessionStore) Revalidate(ctx context.Context) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur == nil {
		return
	}
	if cur.Expired(s.now()) && cur.RefreshToken == "" {
		s.Expire(ctx)
	}
}

func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

func (s *SessionStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.RefreshToken
}

func (s *SessionStore) State() session.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionStore) Current() (session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return session.Session{}, false
	}
	return *s.current, true
}

// RequireAuth is the Guard used by every session-dependent resource.
func (s *SessionStore) RequireAuth() error {
	if _, ok := s.Current(); !ok {
		return apperror.Unauthenticated(apperror.MessageSessionExpired)
	}
	return nil
}

// RequireRole fails locally with Forbidden when the live session holds another role.
func (s *SessionStore) RequireRole(role session.Role) error {
	cur, ok := s.Current()
	if !ok {
		return apperror.Unauthenticated(apperror.MessageSessionExpired)
	}
	if cur.Role != role {
		return apperror.Forbidden(nil)
	}
	return nil
}
