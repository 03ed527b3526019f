// Package social is the profile and follow client behind the people screen.
package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/thibis/thibis/pkg/thibis"
)

// searchLimit caps search results, matching the people-screen page size.
const searchLimit = 10

// Client wraps profile search and the follow toggle on an authenticated
// session. Search is rate limited to survive search-as-you-type callers.
type Client struct {
	session *thibis.Session
	logger  *slog.Logger
	limiter *rate.Limiter
}

func NewClient(session *thibis.Session, logger *slog.Logger) *Client {
	return &Client{
		session: session,
		logger:  logger,
		// Keystroke-driven searches: a small burst then ~4 requests a second.
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
}

// Search finds verified profiles matching query. An empty or whitespace query
// returns no results without calling the backend. The call blocks on the
// rate limiter, so stale keystrokes queue instead of flooding the backend.
func (c *Client) Search(ctx context.Context, query string) ([]thibis.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search throttled: %w", err)
	}

	return c.session.SearchProfiles(ctx, query, searchLimit)
}

// ProfileByUsername fetches a single profile by its unique username.
func (c *Client) ProfileByUsername(ctx context.Context, username string) (thibis.Profile, error) {
	return c.session.ProfileByUsername(ctx, username)
}

// ToggleFollow flips the follow state for targetID and reports the new state.
func (c *Client) ToggleFollow(ctx context.Context, targetID string) (following bool, err error) {
	current, err := c.session.IsFollowing(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}

	if current {
		if err := c.session.Unfollow(ctx, targetID); err != nil {
			return true, err
		}
		c.logger.Debug("unfollowed", "target_id", targetID)
		return false, nil
	}

	if err := c.session.Follow(ctx, targetID); err != nil {
		return false, err
	}
	c.logger.Debug("followed", "target_id", targetID)
	return true, nil
}
