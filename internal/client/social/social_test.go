package social

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thibis/thibis/pkg/thibis"
)

type socialBackend struct {
	searches  atomic.Int64
	following atomic.Bool
	follows   atomic.Int64
	unfollows atomic.Int64
}

func (b *socialBackend) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		b.searches.Add(1)
		q := r.URL.Query()
		if q.Get("verified") != "true" || q.Get("limit") != "10" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_request"})
			return
		}
		_ = json.NewEncoder(w).Encode([]thibis.Profile{
			{ID: "bob", Username: "bob", DisplayName: "Bob", IsVerified: true},
		})
	})
	mux.HandleFunc("GET /v1/profiles/by-username/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") != "bob" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "not_found",
				"error_description": "profile not found",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(thibis.Profile{ID: "bob", Username: "bob"})
	})
	mux.HandleFunc("GET /v1/follows/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"following": b.following.Load()})
	})
	mux.HandleFunc("PUT /v1/follows/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.follows.Add(1)
		b.following.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /v1/follows/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.unfollows.Add(1)
		b.following.Store(false)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSocialClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	sdk := thibis.NewSDKClient(baseURL)
	session := sdk.NewSessionFromTokens("alice", "alice@example.com", "access", "refresh", 3600)
	return NewClient(session, slog.New(slog.DiscardHandler))
}

func TestSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty query skips the backend", func(t *testing.T) {
		backend := &socialBackend{}
		c := newSocialClient(t, backend.server(t).URL)

		for _, q := range []string{"", "   ", "\t"} {
			profiles, err := c.Search(ctx, q)
			require.NoError(t, err)
			require.Empty(t, profiles)
		}
		require.Zero(t, backend.searches.Load())
	})

	t.Run("returns verified matches", func(t *testing.T) {
		backend := &socialBackend{}
		c := newSocialClient(t, backend.server(t).URL)

		profiles, err := c.Search(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		require.Equal(t, "bob", profiles[0].Username)
		require.True(t, profiles[0].IsVerified)
	})

	t.Run("cancelled context aborts a throttled search", func(t *testing.T) {
		backend := &socialBackend{}
		c := newSocialClient(t, backend.server(t).URL)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		// Drain the burst first so the limiter would actually wait.
		_, _ = c.Search(ctx, "bob")
		_, _ = c.Search(ctx, "bob")

		_, err := c.Search(cancelled, "bob")
		require.Error(t, err)
	})
}

func TestProfileByUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := &socialBackend{}
	c := newSocialClient(t, backend.server(t).URL)

	profile, err := c.ProfileByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", profile.ID)

	_, err = c.ProfileByUsername(ctx, "nobody")
	var apiErr *thibis.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, thibis.ErrorCodeNotFound, apiErr.Code)
}

func TestToggleFollow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := &socialBackend{}
	c := newSocialClient(t, backend.server(t).URL)

	following, err := c.ToggleFollow(ctx, "bob")
	require.NoError(t, err)
	require.True(t, following)
	require.EqualValues(t, 1, backend.follows.Load())

	following, err = c.ToggleFollow(ctx, "bob")
	require.NoError(t, err)
	require.False(t, following)
	require.EqualValues(t, 1, backend.unfollows.Load())
}
