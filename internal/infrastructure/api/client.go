package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"hirepath/internal/pkg/apperror"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "hirepath-client/1.0"
	requestIDHeader  = "X-Request-ID"
)

var (
	ErrEmptyResponse  = errors.New("api: empty response body")
	ErrNoRefreshToken = errors.New("api: no refresh token")
)

// TokenSource supplies credentials to the transport and receives the outcome of a refresh.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	ReplaceToken(ctx context.Context, access string) error
	Expire(ctx context.Context)
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Endpoints Endpoints
	Logger    *log.Logger
}

type Client struct {
	http      *client.Client
	endpoints Endpoints
	logger    *log.Logger

	mu      sync.RWMutex
	tokens  TokenSource
	refresh singleflight.Group
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	endpoints := opts.Endpoints
	if endpoints == (Endpoints{}) {
		endpoints = DefaultEndpoints()
	}

	hc := client.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")).
		SetTimeout(timeout).
		SetUserAgent(ua)

	return &Client{http: hc, endpoints: endpoints, logger: logger}
}

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

func (c *Client) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) accessToken() string {
	if ts := c.tokenSource(); ts != nil {
		return ts.AccessToken()
	}
	return ""
}

type request struct {
	method string
	path   string
	query  map[string]string
	body   any
	files  func() []*client.File
	auth   bool
	// token is sent as-is on requests that must not trigger a refresh.
	token string
}

// do sends req and decodes a 2xx body into out. An authenticated request that comes back 401 is
// retried once, after a token refresh shared by every caller that hit the same 401.
func (c *Client) do(ctx context.Context, req request, out any) error {
	used := req.token
	if req.auth {
		used = c.accessToken()
	}

	status, body, err := c.send(ctx, req, used)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && req.auth {
		token, err := c.renewToken(ctx, used)
		if err != nil {
			return err
		}
		status, body, err = c.send(ctx, req, token)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			if ts := c.tokenSource(); ts != nil {
				ts.Expire(ctx)
			}
			return apperror.FromResponse(status, body)
		}
	}

	return decode(status, body, out)
}

func (c *Client) send(ctx context.Context, req request, token string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reqID := uuid.NewString()
	headers := map[string]string{
		requestIDHeader: reqID,
		"Accept":        "application/json",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	cfg := client.Config{
		Ctx:    ctx,
		Header: headers,
		Param:  req.query,
	}
	switch {
	case req.body != nil:
		cfg.Body = req.body
	case req.files != nil:
		cfg.File = req.files()
	}

	start := time.Now()
	resp, err := c.http.Custom(req.path, req.method, cfg)
	if err != nil {
		c.logger.Printf("api | request_id=%s method=%s path=%s status=error latency=%s err=%v", reqID, req.method, req.path, time.Since(start), err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, apperror.Transient(apperror.MessageNetwork, ctxErr)
		}
		return 0, nil, apperror.Transient(apperror.MessageNetwork, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	c.logger.Printf("api | request_id=%s method=%s path=%s status=%d latency=%s", reqID, req.method, req.path, status, time.Since(start))
	return status, body, nil
}

// renewToken returns a usable access token after a 401 on a request sent with used. When another
// caller already replaced the token, that token is returned without a second refresh.
func (c *Client) renewToken(ctx context.Context, used string) (string, error) {
	ts := c.tokenSource()
	if ts == nil {
		return "", apperror.Unauthenticated(apperror.MessageSessionExpired)
	}
	if current := ts.AccessToken(); current != "" && current != used {
		return current, nil
	}

	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		refresh := ts.RefreshToken()
		if refresh == "" {
			return "", ErrNoRefreshToken
		}

		var out struct {
			Access string `json:"access"`
		}
		rctx := context.WithoutCancel(ctx)
		if err := c.do(rctx, request{
			method: http.MethodPost,
			path:   c.endpoints.Refresh,
			body:   map[string]string{"refresh": refresh},
		}, &out); err != nil {
			return "", err
		}
		if strings.TrimSpace(out.Access) == "" {
			return "", ErrEmptyResponse
		}
		if err := ts.ReplaceToken(rctx, out.Access); err != nil {
			return "", err
		}
		return out.Access, nil
	})
	if err != nil {
		c.logger.Printf("api | op=refresh status=error err=%v", err)
		ts.Expire(ctx)
		return "", apperror.New(apperror.KindUnauthenticated, http.StatusUnauthorized, apperror.MessageSessionExpired, err)
	}
	return v.(string), nil
}

func decode(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return apperror.FromResponse(status, body)
	}
	if out == nil {
		return nil
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return apperror.New(apperror.KindTransient, status, apperror.MessageServerError, ErrEmptyResponse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperror.New(apperror.KindTransient, status, apperror.MessageServerError, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query, auth: true}, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body, auth: true}, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, request{method: http.MethodPut, path: path, body: body, auth: true}, out)
}

func (c *Client) patch(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, request{method: http.MethodPatch, path: path, body: body, auth: true}, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path, auth: true}, nil)
}
