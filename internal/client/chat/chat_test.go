package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thibis/thibis/pkg/thibis"
)

func TestChannelID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "chat_alice_bob", ChannelID("alice", "bob"))

	// The derivation is intentionally order-dependent: each side addresses
	// the channel by its own id first.
	require.NotEqual(t, ChannelID("alice", "bob"), ChannelID("bob", "alice"))
}

type chatBackend struct {
	contactInfo string
	history     []thibis.Message
	live        []thibis.Message
	sent        []string
}

func (b *chatBackend) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/profiles/{id}/contact", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"contact_info": b.contactInfo})
	})
	mux.HandleFunc("GET /v1/channels/{ch}/messages", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(b.history)
	})
	mux.HandleFunc("POST /v1/channels/{ch}/messages", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
			UserID  string `json:"user_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.sent = append(b.sent, req.Content)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(thibis.Message{
			ID:        "m-new",
			Content:   req.Content,
			UserID:    req.UserID,
			ChannelID: r.PathValue("ch"),
			CreatedAt: time.Now().UTC(),
		})
	})
	mux.HandleFunc("GET /v1/realtime/channels/{ch}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		flusher.Flush()

		for _, msg := range b.live {
			raw, _ := json.Marshal(msg)
			fmt.Fprintf(w, "data: %s\n\n", raw)
			flusher.Flush()
		}
		<-r.Context().Done()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newChatClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client := thibis.NewSDKClient(baseURL)
	session := client.NewSessionFromTokens("alice", "alice@example.com", "access", "refresh", 3600)
	return &Client{Session: session, Logger: slog.New(slog.DiscardHandler)}
}

func TestOpenChat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	peer := thibis.Profile{ID: "bob", Username: "bob", UUIDCode: "bob-uuid-code"}

	t.Run("contact info unlocks the chat", func(t *testing.T) {
		backend := &chatBackend{
			contactInfo: "bob@example.com",
			history: []thibis.Message{
				{ID: "m1", Content: "hi", UserID: "bob", ChannelID: "chat_alice_bob"},
			},
		}
		c := newChatClient(t, backend.server(t).URL)

		conv, err := c.OpenChat(ctx, peer, "bob@example.com")
		require.NoError(t, err)
		defer conv.Close()

		require.Equal(t, "chat_alice_bob", conv.ChannelID())
		require.Len(t, conv.History(), 1)
		require.Equal(t, "hi", conv.History()[0].Content)
	})

	t.Run("account code also unlocks the chat", func(t *testing.T) {
		backend := &chatBackend{contactInfo: "bob@example.com"}
		c := newChatClient(t, backend.server(t).URL)

		conv, err := c.OpenChat(ctx, peer, "bob-uuid-code")
		require.NoError(t, err)
		conv.Close()
	})

	t.Run("wrong code is rejected before loading anything", func(t *testing.T) {
		backend := &chatBackend{contactInfo: "bob@example.com"}
		c := newChatClient(t, backend.server(t).URL)

		_, err := c.OpenChat(ctx, peer, "guess")
		require.ErrorIs(t, err, ErrInvalidMessageCode)
	})

	t.Run("live events are delivered", func(t *testing.T) {
		backend := &chatBackend{
			contactInfo: "bob@example.com",
			live: []thibis.Message{
				{ID: "m2", Content: "you there?", UserID: "bob", ChannelID: "chat_alice_bob"},
			},
		}
		c := newChatClient(t, backend.server(t).URL)

		conv, err := c.OpenChat(ctx, peer, "bob@example.com")
		require.NoError(t, err)
		defer conv.Close()

		select {
		case msg := <-conv.Events():
			require.Equal(t, "you there?", msg.Content)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a live message")
		}
	})

	t.Run("send appends to the channel", func(t *testing.T) {
		backend := &chatBackend{contactInfo: "bob@example.com"}
		c := newChatClient(t, backend.server(t).URL)

		conv, err := c.OpenChat(ctx, peer, "bob@example.com")
		require.NoError(t, err)
		defer conv.Close()

		msg, err := conv.Send(ctx, "hello bob")
		require.NoError(t, err)
		require.Equal(t, "hello bob", msg.Content)
		require.Equal(t, "alice", msg.UserID)
		require.Equal(t, []string{"hello bob"}, backend.sent)
	})

	t.Run("close ends the subscription cleanly", func(t *testing.T) {
		backend := &chatBackend{contactInfo: "bob@example.com"}
		c := newChatClient(t, backend.server(t).URL)

		conv, err := c.OpenChat(ctx, peer, "bob@example.com")
		require.NoError(t, err)

		conv.Close()
		require.NoError(t, conv.Err())

		// The events channel is closed after teardown.
		_, open := <-conv.Events()
		require.False(t, open)
	})
}
