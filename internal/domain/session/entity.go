package session

import (
	"strings"
	"time"
)

type Role string

const (
	RoleGraduate  Role = "GRADUATE"
	RoleRecruiter Role = "RECRUITER"
)

func (r Role) Valid() bool {
	return r == RoleGraduate || r == RoleRecruiter
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// State is the lifecycle of the process-wide session.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Session struct {
	UserID       int64     `json:"user_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

func (s Session) Identity() Identity {
	return Identity{ID: s.UserID, Email: s.Email, Role: s.Role, Phone: s.Phone}
}

func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

func (s Session) IsRecruiter() bool {
	return s.Role == RoleRecruiter
}

// Change is delivered to session listeners after every login, logout or expiry.
type Change struct {
	Previous *Session
	Current  *Session
}

func (c Change) SameUser() bool {
	if c.Previous == nil || c.Current == nil {
		return c.Previous == nil && c.Current == nil
	}
	return c.Previous.UserID == c.Current.UserID
}
