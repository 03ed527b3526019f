package thibis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SearchProfiles looks up verified profiles whose display name or username
// matches query. The backend caps results at limit; the UI uses 10.
func (s *Session) SearchProfiles(ctx context.Context, query string, limit int) ([]Profile, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("verified", "true")
	q.Set("limit", fmt.Sprintf("%d", limit))

	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/profiles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := decodeJSON(resp, &profiles, http.StatusOK); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfileByUsername fetches a single profile by its unique username.
func (s *Session) ProfileByUsername(ctx context.Context, username string) (Profile, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet,
		"/v1/profiles/by-username/"+url.PathEscape(username), nil)
	if err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err := decodeJSON(resp, &profile, http.StatusOK); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

type contactInfoResponse struct {
	ContactInfo string `json:"contact_info"`
}

// ContactInfo returns the contact string (email or phone) the profile owner
// registered, used by the message-code gate when opening a chat.
func (s *Session) ContactInfo(ctx context.Context, profileID string) (string, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet,
		"/v1/profiles/"+url.PathEscape(profileID)+"/contact", nil)
	if err != nil {
		return "", err
	}

	var out contactInfoResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.ContactInfo, nil
}
