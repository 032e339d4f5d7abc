package dto

import (
	"time"

	"hirepath/internal/domain/session"
)

// SessionResponse exposes the identity of the live session. Credentials never leave the process.
type SessionResponse struct {
	State     string       `json:"state"`
	UserID    int64        `json:"user_id,omitempty"`
	Email     string       `json:"email,omitempty"`
	Role      session.Role `json:"role,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

func NewSessionResponse(state session.State, cur session.Session, ok bool) SessionResponse {
	res := SessionResponse{State: state.String()}
	if !ok {
		return res
	}
	res.UserID = cur.UserID
	res.Email = cur.Email
	res.Role = cur.Role
	res.Phone = cur.Phone
	if !cur.ExpiresAt.IsZero() {
		exp := cur.ExpiresAt
		res.ExpiresAt = &exp
	}
	return res
}
