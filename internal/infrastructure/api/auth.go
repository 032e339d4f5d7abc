package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"hirepath/internal/domain/session"
)

type LoginResult struct {
	Access  string           `json:"access"`
	Refresh string           `json:"refresh"`
	User    session.Identity `json:"user"`
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      session.Role
	Phone     string
}

func (c *Client) Login(ctx context.Context, identifier, secret string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	var out LoginResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Login,
		body: map[string]string{
			"username": identifier,
			"email":    identifier,
			"password": secret,
		},
	}, &out)
	if err != nil {
		return LoginResult{}, err
	}
	if strings.TrimSpace(out.Access) == "" {
		return LoginResult{}, ErrEmptyResponse
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in SignupInput) error {
	email := strings.TrimSpace(in.Email)
	var ack json.RawMessage
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Register,
		body: map[string]string{
			"username":   email,
			"email":      email,
			"first_name": strings.TrimSpace(in.FirstName),
			"last_name":  strings.TrimSpace(in.LastName),
			"password":   in.Password,
			"password2":  in.Password,
			"role":       string(in.Role),
			"phone":      strings.TrimSpace(in.Phone),
		},
	}, &ack)
}

// Logout asks the server to invalidate refresh. It never triggers a token refresh.
func (c *Client) Logout(ctx context.Context, access, refresh string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.Logout,
		body:   map[string]string{"refresh": refresh},
		token:  access,
	}, nil)
}
