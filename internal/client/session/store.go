// Package session keeps the signed-in session across restarts, encrypted at
// rest under a passphrase-derived key.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/thibis/thibis/pkg/thibis"
)

var (
	// ErrNoSession means no session file exists yet.
	ErrNoSession = errors.New("no stored session")
	// ErrBadPassphrase covers both a wrong passphrase and a tampered file;
	// AES-GCM cannot tell the two apart.
	ErrBadPassphrase = errors.New("wrong passphrase or corrupt session file")
	// ErrCorrupt means the file is too short or structurally broken.
	ErrCorrupt = errors.New("corrupt session file")
)

const (
	saltLen  = 16
	nonceLen = 12
)

// State is the persisted session snapshot.
type State struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store reads and writes the encrypted session file. Layout on disk is
// salt | nonce | ciphertext, with the key derived per write from the
// passphrase and the fresh salt.
type Store struct {
	Path string
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// Save encrypts and writes the session snapshot.
func (st *Store) Save(sess *thibis.Session, passphrase string) error {
	state := State{
		UserID:       sess.UserID(),
		Email:        sess.Email(),
		AccessToken:  sess.AccessToken(),
		RefreshToken: sess.RefreshToken(),
		ExpiresAt:    time.Now().Add(time.Duration(sess.ExpiresIn()) * time.Second),
	}

	plaintext, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return fmt.Errorf("failed to init cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to init cipher: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	blob := make([]byte, 0, saltLen+nonceLen+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	if err := os.MkdirAll(filepath.Dir(st.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(st.Path, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load decrypts the stored snapshot and rebuilds a live session on client.
// The access token may already be expired; the session refreshes on first use.
func (st *Store) Load(client *thibis.SDKClient, passphrase string) (*thibis.Session, error) {
	blob, err := os.ReadFile(st.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if len(blob) < saltLen+nonceLen+1 {
		return nil, ErrCorrupt
	}
	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+nonceLen]
	ciphertext := blob[saltLen+nonceLen:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}

	var state State
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, ErrCorrupt
	}

	expiresIn := int(time.Until(state.ExpiresAt).Seconds())
	return client.NewSessionFromTokens(state.UserID, state.Email,
		state.AccessToken, state.RefreshToken, expiresIn), nil
}

// Clear removes the stored session. Missing file is not an error.
func (st *Store) Clear() error {
	if err := os.Remove(st.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
