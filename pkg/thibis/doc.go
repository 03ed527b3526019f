// Package thibis is the client SDK for the hosted Thibis backend. It covers
// the account endpoints (sign-up, sign-in, OTP verification, token refresh),
// the social surface (profiles, follows) and the per-channel message and
// realtime APIs.
//
// Unauthenticated operations hang off SDKClient; authenticated operations
// hang off Session, which holds the token pair and refreshes the access token
// transparently shortly before it expires.
package thibis
