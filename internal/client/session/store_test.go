package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thibis/thibis/pkg/thibis"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Path: filepath.Join(t.TempDir(), "session.bin")}
}

func TestStore(t *testing.T) {
	t.Parallel()

	client := thibis.NewSDKClient("https://api.example.com")

	t.Run("save then load", func(t *testing.T) {
		st := newStore(t)
		sess := client.NewSessionFromTokens("user-1", "a@example.com", "access-1", "refresh-1", 3600)

		require.NoError(t, st.Save(sess, "correct horse battery staple"))

		loaded, err := st.Load(client, "correct horse battery staple")
		require.NoError(t, err)
		require.Equal(t, "user-1", loaded.UserID())
		require.Equal(t, "a@example.com", loaded.Email())
		require.Equal(t, "access-1", loaded.AccessToken())
		require.Equal(t, "refresh-1", loaded.RefreshToken())
	})

	t.Run("no session file", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Load(client, "whatever")
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		st := newStore(t)
		sess := client.NewSessionFromTokens("user-1", "a@example.com", "access-1", "refresh-1", 3600)
		require.NoError(t, st.Save(sess, "right"))

		_, err := st.Load(client, "wrong")
		require.ErrorIs(t, err, ErrBadPassphrase)
	})

	t.Run("tampered file", func(t *testing.T) {
		st := newStore(t)
		sess := client.NewSessionFromTokens("user-1", "a@example.com", "access-1", "refresh-1", 3600)
		require.NoError(t, st.Save(sess, "pass"))

		blob, err := os.ReadFile(st.Path)
		require.NoError(t, err)
		blob[len(blob)-1] ^= 0xff
		require.NoError(t, os.WriteFile(st.Path, blob, 0o600))

		_, err = st.Load(client, "pass")
		require.ErrorIs(t, err, ErrBadPassphrase)
	})

	t.Run("truncated file", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, os.WriteFile(st.Path, []byte("short"), 0o600))

		_, err := st.Load(client, "pass")
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("save overwrites the previous session", func(t *testing.T) {
		st := newStore(t)
		first := client.NewSessionFromTokens("user-1", "a@example.com", "access-1", "refresh-1", 3600)
		require.NoError(t, st.Save(first, "pass"))

		second := client.NewSessionFromTokens("user-2", "b@example.com", "access-2", "refresh-2", 3600)
		require.NoError(t, st.Save(second, "pass"))

		loaded, err := st.Load(client, "pass")
		require.NoError(t, err)
		require.Equal(t, "user-2", loaded.UserID())
	})

	t.Run("clear removes the file", func(t *testing.T) {
		st := newStore(t)
		sess := client.NewSessionFromTokens("user-1", "a@example.com", "access-1", "refresh-1", 3600)
		require.NoError(t, st.Save(sess, "pass"))

		require.NoError(t, st.Clear())
		_, err := st.Load(client, "pass")
		require.ErrorIs(t, err, ErrNoSession)

		// Clearing again is fine.
		require.NoError(t, st.Clear())
	})
}
