package thibis

import (
	"context"
	"net/http"
	"net/url"
)

type followStatusResponse struct {
	Following bool `json:"following"`
}

// IsFollowing reports whether the current user follows targetID.
func (s *Session) IsFollowing(ctx context.Context, targetID string) (bool, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet,
		"/v1/follows/"+url.PathEscape(targetID), nil)
	if err != nil {
		return false, err
	}

	var out followStatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.Following, nil
}

// Follow adds targetID to the current user's following set.
func (s *Session) Follow(ctx context.Context, targetID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPut,
		"/v1/follows/"+url.PathEscape(targetID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Unfollow removes targetID from the current user's following set.
func (s *Session) Unfollow(ctx context.Context, targetID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodDelete,
		"/v1/follows/"+url.PathEscape(targetID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
