package signup_test

/*
 * End-to-end walk of the sign-up flow: fingerprint generation against a real
 * sqlite-backed registry, admission evaluation, the wizard, photo uploads,
 * account creation and OTP verification against a stubbed backend, then a
 * second attempt from the same device hitting the one-account-per-device gate.
 */

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thibis/thibis/internal/client/account"
	"github.com/thibis/thibis/internal/client/admission"
	"github.com/thibis/thibis/internal/client/domain"
	"github.com/thibis/thibis/internal/client/fingerprint"
	"github.com/thibis/thibis/internal/client/registry"
	"github.com/thibis/thibis/internal/client/registry/drivers/sqlite"
	"github.com/thibis/thibis/pkg/thibis"
)

type memoryObjects struct {
	paths []string
}

func (m *memoryObjects) Upload(_ context.Context, _, path, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.paths = append(m.paths, path)
	return path, nil
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":           "user-1",
			"verification_sent": true,
		})
	})
	mux.HandleFunc("POST /v1/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "bearer",
			"expires_in":    3600,
			"user_id":       "user-1",
			"email":         req["email"],
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func fillDraft(w *account.Wizard, email string) {
	d := w.Draft()
	d.ProfilePhoto = &domain.FileUpload{Name: "me.jpg", Data: []byte("profile")}
	d.DocumentPhoto = &domain.FileUpload{Name: "id.png", Data: []byte("document")}
	d.FullName = "Ada Lovelace"
	d.Username = "ada"
	d.Gender = "female"
	d.Email = email
	d.Password = "Abcdefgh1!"
	d.ConfirmPassword = "Abcdefgh1!"
}

func TestSignUpFlow(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.ApplyMigrations())

	reg := registry.New(store)
	policy := &admission.Policy{Registry: reg, Logger: logger}

	env := &fingerprint.HostEnvironment{
		Version:    "test",
		StateDir:   t.TempDir(),
		Resolution: "1920x1080",
	}
	generator := &fingerprint.Generator{Env: env, Registry: reg, Logger: logger}

	backend := newBackend(t)
	objects := &memoryObjects{}
	controller := &account.Controller{
		Policy:  policy,
		Objects: objects,
		Client:  thibis.NewSDKClient(backend.URL),
		Bucket:  "pages",
		Logger:  logger,
	}

	// A fresh device is admitted.
	fp := generator.Generate(ctx)
	require.NotEmpty(t, fp.ID)
	require.Equal(t, admission.StateAllowed, policy.Evaluate(ctx, fp.ID))

	// Walk the wizard to the credentials step.
	wizard := account.NewWizard()
	fillDraft(wizard, "ada@example.com")
	require.NoError(t, wizard.Next())
	require.NoError(t, wizard.Next())
	require.Equal(t, account.StepCredentials, wizard.Step())

	// Submit uploads both photos and lands on OTP verification.
	require.NoError(t, controller.Submit(ctx, wizard, fp))
	require.Equal(t, account.StepOtpPending, wizard.Step())
	require.Len(t, objects.paths, 2)

	session, err := controller.VerifyOTP(ctx, wizard, "123456")
	require.NoError(t, err)
	require.Equal(t, account.StepDone, wizard.Step())
	require.Equal(t, "user-1", session.UserID())

	// The device and email are now registered, so re-evaluation still admits
	// this device.
	require.Equal(t, admission.StateAllowed, policy.Evaluate(ctx, fp.ID))

	// A second account with a different email from the same device is
	// rejected before anything is uploaded.
	second := account.NewWizard()
	fillDraft(second, "impostor@example.com")
	require.NoError(t, second.Next())
	require.NoError(t, second.Next())

	err = controller.Submit(ctx, second, fp)
	require.ErrorIs(t, err, admission.ErrDeviceLimit)
	require.Len(t, objects.paths, 2)

	// Re-generating the fingerprint yields the same id and keeps admission
	// stable across restarts of the client.
	again := generator.Generate(ctx)
	require.Equal(t, fp.ID, again.ID)
}
