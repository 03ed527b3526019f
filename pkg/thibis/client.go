package thibis

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the hosted Thibis backend.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// StreamClient is used for long-lived realtime streams. It must not carry
	// a request timeout; stream lifetime is bounded by context instead.
	StreamClient *http.Client
}

// NewSDKClient creates a backend client with sane request timeouts.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		StreamClient: &http.Client{},
	}
}

// NewSessionFromTokens rebuilds an authenticated session from previously
// stored tokens, e.g. after the client restarts. Auto-refresh still applies.
func (c *SDKClient) NewSessionFromTokens(userID, email, accessToken, refreshToken string, expiresIn int) *Session {
	return &Session{
		client:       c,
		userID:       userID,
		email:        email,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiryFrom(expiresIn),
	}
}

// expiryFrom converts an expires_in to a local deadline with a 30 second
// buffer so refresh happens before the token actually lapses.
func expiryFrom(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn)*time.Second - 30*time.Second)
}
