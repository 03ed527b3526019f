package thibis

import "time"

// Profile is the public account record.
type Profile struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatar_url"`
	IsVerified     bool   `json:"is_verified"`
	UUIDCode       string `json:"uuid_code"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
}

// Message is one row in a direct-message channel. The channel id travels in
// the post_id column, a leftover of the backend reusing its comments table
// for direct messages.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SignUpResponse acknowledges account creation; the account stays pending
// until the emailed one-time code is verified.
type SignUpResponse struct {
	UserID           string `json:"user_id"`
	VerificationSent bool   `json:"verification_sent"`
}

// TokenResponse is returned by sign-in, OTP verification and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// ErrorResponse is the backend's error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// PresenceState is one tracked participant on a presence channel.
type PresenceState struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	OnlineAt time.Time `json:"online_at"`
}
