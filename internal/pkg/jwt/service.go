package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims mirrors what the backend puts in its access tokens. The client never holds the signing
// secret, so claims are read without signature verification and used only for expiry and identity
// hints; the backend stays the authority.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`

	jwtlib.RegisteredClaims
}

func (c Claims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time.UTC()
}

type Service interface {
	Inspect(tokenString string) (Claims, error)
}

type Inspector struct {
	parser *jwtlib.Parser
	leeway time.Duration

	now func() time.Time
}

func NewInspector(leeway time.Duration) *Inspector {
	return &Inspector{
		parser: jwtlib.NewParser(),
		leeway: leeway,
		now:    time.Now,
	}
}

// Inspect decodes tokenString and reports ErrTokenExpired once its exp claim (minus leeway) has
// passed. Claims are returned alongside ErrTokenExpired.
func (i *Inspector) Inspect(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return Claims{}, ErrTokenInvalid
	}

	var c Claims
	if _, _, err := i.parser.ParseUnverified(tokenString, &c); err != nil {
		return Claims{}, ErrTokenInvalid
	}

	if c.TokenType != "" && c.TokenType != TokenTypeAccess && c.TokenType != TokenTypeRefresh {
		return Claims{}, ErrTokenInvalid
	}

	exp := c.Expiry()
	if !exp.IsZero() && !i.now().UTC().Before(exp.Add(-i.leeway)) {
		return c, ErrTokenExpired
	}
	return c, nil
}
