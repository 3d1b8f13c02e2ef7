package apiclient

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// TokenSource serves tok while it is valid and exchanges its refresh token at
// the refresh endpoint once it has expired. onRefresh receives each refreshed
// token so the caller can persist it; a failure there is logged, not returned.
func (c *Client) TokenSource(ctx context.Context, tok *oauth2.Token, onRefresh func(*oauth2.Token) error) oauth2.TokenSource {
	src := &refreshingSource{
		ctx:       ctx,
		client:    c,
		onRefresh: onRefresh,
	}
	if tok != nil {
		src.refreshToken = tok.RefreshToken
	}
	return oauth2.ReuseTokenSource(tok, src)
}

type refreshingSource struct {
	ctx          context.Context
	client       *Client
	refreshToken string
	onRefresh    func(*oauth2.Token) error
}

func (s *refreshingSource) Token() (*oauth2.Token, error) {
	if s.refreshToken == "" {
		return nil, apperrors.ErrNoRefreshToken
	}

	resp, err := s.client.Refresh(s.ctx, s.refreshToken)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{
		AccessToken:  resp.Access,
		TokenType:    "Bearer",
		RefreshToken: s.refreshToken,
		Expiry:       AccessExpiry(resp.Access),
	}
	if resp.Refresh != "" {
		tok.RefreshToken = resp.Refresh
		s.refreshToken = resp.Refresh
	}

	if s.onRefresh != nil {
		if err := s.onRefresh(tok); err != nil {
			log.Err(err).Msg("Failed to persist refreshed token")
		}
	}
	return tok, nil
}

// AccessExpiry reads the exp claim of a JWT access token without verifying it.
// The result is informational only: it schedules refreshes and is shown to the
// user, it is never used to decide whether a session is trusted. Tokens that
// are not JWTs, or have no exp claim, yield the zero time.
func AccessExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
