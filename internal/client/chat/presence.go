package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thibis/thibis/pkg/thibis"
)

// presenceChannel is the single shared channel every signed-in user joins.
const presenceChannel = "online-users"

// PresenceTracker announces the current user on the shared presence channel
// and keeps the roster of online users current.
type PresenceTracker struct {
	sub    *thibis.PresenceSubscription
	logger *slog.Logger

	mu     sync.RWMutex
	online map[string]thibis.PresenceState
	done   chan struct{}
}

// TrackPresence joins the shared presence channel as the session user and
// starts following roster updates. Close leaves the channel.
func TrackPresence(ctx context.Context, session *thibis.Session, username string, logger *slog.Logger) (*PresenceTracker, error) {
	sub, err := session.TrackPresence(ctx, presenceChannel, thibis.PresenceState{
		UserID:   session.UserID(),
		Username: username,
		OnlineAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join presence channel: %w", err)
	}

	t := &PresenceTracker{
		sub:    sub,
		logger: logger,
		online: make(map[string]thibis.PresenceState),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		for roster := range sub.Roster() {
			t.mu.Lock()
			t.online = make(map[string]thibis.PresenceState, len(roster))
			for _, state := range roster {
				t.online[state.UserID] = state
			}
			t.mu.Unlock()
		}
		if err := sub.Err(); err != nil {
			logger.Warn("presence stream ended", "error", err)
		}
	}()

	return t, nil
}

// IsOnline reports whether userID is currently tracked on the channel.
func (t *PresenceTracker) IsOnline(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.online[userID]
	return ok
}

// Online returns a snapshot of the current roster.
func (t *PresenceTracker) Online() []thibis.PresenceState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	roster := make([]thibis.PresenceState, 0, len(t.online))
	for _, state := range t.online {
		roster = append(roster, state)
	}
	return roster
}

// Close untracks the current user and stops following the roster.
func (t *PresenceTracker) Close() {
	t.sub.Close()
	<-t.done
}
