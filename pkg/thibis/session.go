package thibis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated session with automatic token refresh. The core
// client flows are single-threaded, but realtime subscriptions share the
// session from their reader goroutines, so access stays mutex-guarded.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	userID       string
	email        string
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:       client,
		userID:       tok.UserID,
		email:        tok.Email,
		accessToken:  tok.AccessToken,
		refreshToken: tok.RefreshToken,
		expiresAt:    expiryFrom(tok.ExpiresIn),
	}
}

// UserID returns the authenticated account id.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Email returns the authenticated account email.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// AccessToken returns the current access token without freshness checks.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresIn reports the seconds until the buffered expiry deadline.
func (s *Session) ExpiresIn() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(time.Until(s.expiresAt).Seconds())
}

// Claims decodes the access token's registered claims. The client holds no
// verification keys, so the signature is not checked here; the backend
// remains the authority on token validity.
func (s *Session) Claims() (jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken(), &claims); err != nil {
		return jwt.RegisteredClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

// getValidToken returns a usable access token, refreshing it when the buffered
// expiry has passed.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token available")
	}

	tok, err := s.client.RefreshGrant(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.expiresAt = expiryFrom(tok.ExpiresIn)
	if tok.UserID != "" {
		s.userID = tok.UserID
	}
	return s.accessToken, nil
}
