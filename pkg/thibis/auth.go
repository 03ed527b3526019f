package thibis

import (
	"context"
	"net/http"
)

// OTP purposes accepted by VerifyOTP.
const (
	OTPPurposeSignup = "signup"
	OTPPurposeLogin  = "login"
)

type signUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SignUp registers a new account. The backend mails a one-time code to the
// address; the account is unusable until VerifyOTP succeeds. Metadata travels
// opaquely onto the created profile (display name, photo paths, device
// fingerprint and so on).
func (c *SDKClient) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*SignUpResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signup", signUpRequest{
		Email:    email,
		Password: password,
		Metadata: metadata,
	})
	if err != nil {
		return nil, err
	}

	var out SignUpResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn exchanges credentials for an authenticated session.
func (c *SDKClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signin", signInRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	Token   string `json:"token"`
	Purpose string `json:"type"`
}

// VerifyOTP redeems the emailed one-time code and returns the first
// authenticated session for the account.
func (c *SDKClient) VerifyOTP(ctx context.Context, email, code, purpose string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/verify-otp", verifyOTPRequest{
		Email:   email,
		Token:   code,
		Purpose: purpose,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &tok), nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshGrant exchanges a refresh token for a fresh token pair.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/v1/auth/refresh", refreshRequest{
		RefreshToken: refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}
