package store

import (
	"io"
	"log"
	"sync"

	"hirepath/internal/domain/session"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeSession struct {
	mu  sync.Mutex
	cur *session.Session
}

func sessionAs(role session.Role) *fakeSession {
	return &fakeSession{cur: &session.Session{UserID: 1, Email: "user@example.com", Role: role, Token: "t"}}
}

func (f *fakeSession) Current() (session.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cur == nil {
		return session.Session{}, false
	}
	return *f.cur, true
}

func (f *fakeSession) RequireAuth() error {
	if _, ok := f.Current(); !ok {
		return apperror.Unauthenticated(apperror.MessageSessionExpired)
	}
	return nil
}

func (f *fakeSession) RequireRole(role session.Role) error {
	cur, ok := f.Current()
	if !ok {
		return apperror.Unauthenticated(apperror.MessageSessionExpired)
	}
	if cur.Role != role {
		return apperror.Forbidden(nil)
	}
	return nil
}

type recordedNote struct {
	Level   notify.Level
	Title   string
	Message string
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []recordedNote
}

func (f *fakeNotifier) Notify(level notify.Level, title, message string) notify.Notification {
	f.mu.Lock()
	f.notes = append(f.notes, recordedNote{Level: level, Title: title, Message: message})
	f.mu.Unlock()
	return notify.Notification{Level: level, Title: title, Message: message}
}

func (f *fakeNotifier) all() []recordedNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedNote, len(f.notes))
	copy(out, f.notes)
	return out
}
