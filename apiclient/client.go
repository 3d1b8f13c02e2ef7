package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/jrsteele09/ums-portal/internal/requestid"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// UMS API routes
const (
	PathLogin         = "/api/users/login/"
	PathRegister      = "/api/users/register/"
	PathRefresh       = "/api/users/token/refresh/"
	PathProfile       = "/api/users/me/"
	PathDashboard     = "/api/dashboards/%s/"
	PathNotifications = "/api/notifications/"
)

const maxResponseBytes = 1 << 20

// Client talks to the UMS API. It never retries; each call is bound to the
// caller's context and abandoned with it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Login exchanges email and password for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("[apiclient Login] %w: response has no access token", apperrors.ErrInvalidCredentials)
	}
	return &resp, nil
}

// Register creates an account. The role key is always present in the body.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if req.Role == "" {
		req.Role = users.DefaultRole
	}

	var resp RegisterResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh obtains a new access token from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, PathRefresh, refreshRequest{Refresh: refreshToken}, &resp); err != nil {
		return nil, err
	}
	if resp.Access == "" {
		return nil, fmt.Errorf("[apiclient Refresh] %w: response has no access token", apperrors.ErrInvalidCredentials)
	}
	return &resp, nil
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context, ts oauth2.TokenSource) (*users.User, error) {
	var u users.User
	if err := c.do(ctx, c.authorized(ts), http.MethodGet, PathProfile, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Dashboard fetches the counters for scope ("admin", "department", "faculty" or "student").
func (c *Client) Dashboard(ctx context.Context, ts oauth2.TokenSource, scope string) (Stats, error) {
	if scope == "" {
		return nil, fmt.Errorf("[apiclient Dashboard] %w: empty scope", apperrors.ErrNotFound)
	}
	stats := Stats{}
	if err := c.do(ctx, c.authorized(ts), http.MethodGet, fmt.Sprintf(PathDashboard, scope), nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Notifications lists the current user's notifications, newest first as returned by the API.
func (c *Client) Notifications(ctx context.Context, ts oauth2.TokenSource) ([]Notification, error) {
	var page notificationPage
	if err := c.do(ctx, c.authorized(ts), http.MethodGet, PathNotifications, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}

// authorized returns a client that adds the bearer token from ts to each request.
func (c *Client) authorized(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   c.httpClient.Transport,
		},
		Timeout: c.httpClient.Timeout,
	}
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("[apiclient] failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("[apiclient] failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("[apiclient] %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("[apiclient] failed to read response: %w", err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("UMS API call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("[apiclient] failed to decode response: %w", err)
	}
	return nil
}
