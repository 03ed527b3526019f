// Package chat is the direct-message client: one conversation per peer over a
// derived channel, gated by the peer's message code.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thibis/thibis/pkg/thibis"
)

var ErrInvalidMessageCode = errors.New("invalid message code")

// ChannelID derives the direct-message channel between two accounts. The
// derivation is order-dependent: both sides must pass their own id first so
// each peer addresses the channel the opener created.
func ChannelID(userID, peerID string) string {
	return "chat_" + userID + "_" + peerID
}

// Client opens direct-message conversations on an authenticated session.
type Client struct {
	Session *thibis.Session
	Logger  *slog.Logger
}

// OpenChat checks the message code against the peer and returns a live
// conversation. The code must match either the contact info the peer
// registered or the peer's account code. The compare happens client side in
// plain text; the gate keeps strangers out of the compose flow, it is not an
// authentication boundary.
func (c *Client) OpenChat(ctx context.Context, peer thibis.Profile, code string) (*Conversation, error) {
	contact, err := c.Session.ContactInfo(ctx, peer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact info: %w", err)
	}

	if code != contact && code != peer.UUIDCode {
		return nil, ErrInvalidMessageCode
	}

	channelID := ChannelID(c.Session.UserID(), peer.ID)

	history, err := c.Session.Messages(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	sub, err := c.Session.SubscribeMessages(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	c.Logger.Debug("chat opened", "channel_id", channelID, "peer_id", peer.ID)

	return &Conversation{
		session:   c.Session,
		channelID: channelID,
		peer:      peer,
		history:   history,
		sub:       sub,
	}, nil
}

// Conversation is one open direct-message channel. Close releases the
// realtime subscription; a conversation must not be used after Close.
type Conversation struct {
	session   *thibis.Session
	channelID string
	peer      thibis.Profile
	history   []thibis.Message
	sub       *thibis.Subscription
}

// ChannelID returns the derived channel id of this conversation.
func (c *Conversation) ChannelID() string { return c.channelID }

// Peer returns the profile on the other end.
func (c *Conversation) Peer() thibis.Profile { return c.peer }

// History returns the messages loaded when the conversation was opened, in
// ascending creation order. Live messages arrive on Events instead.
func (c *Conversation) History() []thibis.Message { return c.history }

// Events is the live feed of messages inserted into the channel, including
// the current user's own sends echoed back by the backend.
func (c *Conversation) Events() <-chan thibis.Message { return c.sub.Events() }

// Send appends a message to the conversation and returns the stored row.
func (c *Conversation) Send(ctx context.Context, content string) (thibis.Message, error) {
	return c.session.SendMessage(ctx, c.channelID, content)
}

// Close unsubscribes from the realtime feed. Always call it; an open
// subscription holds a network stream.
func (c *Conversation) Close() {
	c.sub.Close()
}

// Err reports why the realtime feed ended, nil for a clean Close.
func (c *Conversation) Err() error { return c.sub.Err() }
