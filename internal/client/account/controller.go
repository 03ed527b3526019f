package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"time"

	"github.com/thibis/thibis/internal/client/admission"
	"github.com/thibis/thibis/internal/client/domain"
	"github.com/thibis/thibis/internal/client/password"
	"github.com/thibis/thibis/internal/client/storage"
	"github.com/thibis/thibis/pkg/thibis"
)

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooWeak  = errors.New("password does not meet the strength requirement")
)

// Storage folders for the two sign-up photos.
const (
	folderProfiles  = "profiles/"
	folderDocuments = "documents/"
)

// Controller runs the submit and verification side of the sign-up wizard.
type Controller struct {
	Policy  *admission.Policy
	Objects storage.ObjectStore
	Client  *thibis.SDKClient
	Bucket  string
	Logger  *slog.Logger

	// Now stamps uploaded photo paths; overridable in tests.
	Now func() time.Time
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Submit validates the completed draft, uploads both photos and creates the
// account. On success the wizard moves to OtpPending bound to the draft email.
//
// Checks run in order: admission, password, photos, uploads, sign-up. Any
// failure aborts the submit and leaves the wizard on the credentials step.
// Photos uploaded before a later failure are not removed; the backend prunes
// unreferenced media.
func (c *Controller) Submit(ctx context.Context, w *Wizard, fp domain.DeviceFingerprint) error {
	if w.Step() != StepCredentials {
		return ErrWrongStep
	}
	draft := w.Draft()

	if err := c.Policy.Authorize(ctx, fp.ID, draft.Email); err != nil {
		return err
	}

	if draft.Password != draft.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !password.Submittable(draft.Password) {
		return ErrPasswordTooWeak
	}

	if draft.ProfilePhoto == nil || draft.DocumentPhoto == nil {
		return ErrPhotosRequired
	}

	profilePath, err := c.uploadPhoto(ctx, folderProfiles, draft.UUID, draft.ProfilePhoto)
	if err != nil {
		return fmt.Errorf("failed to upload profile photo: %w", err)
	}
	documentPath, err := c.uploadPhoto(ctx, folderDocuments, draft.UUID, draft.DocumentPhoto)
	if err != nil {
		return fmt.Errorf("failed to upload document photo: %w", err)
	}

	metadata := map[string]string{
		"full_name":          draft.FullName,
		"username":           draft.Username,
		"gender":             draft.Gender,
		"profile_photo_url":  profilePath,
		"document_photo_url": documentPath,
		"uuid_code":          draft.UUID,
		"device_fingerprint": fp.ID,
	}

	resp, err := c.Client.SignUp(ctx, draft.Email, draft.Password, metadata)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	c.Logger.Info("account created, verification pending",
		"user_id", resp.UserID, "email", draft.Email)

	w.pendingEmail = draft.Email
	w.step = StepOtpPending
	return nil
}

// VerifyOTP redeems the emailed one-time code, finishing the wizard and
// returning the first authenticated session.
func (c *Controller) VerifyOTP(ctx context.Context, w *Wizard, code string) (*thibis.Session, error) {
	if w.Step() != StepOtpPending {
		return nil, ErrWrongStep
	}

	session, err := c.Client.VerifyOTP(ctx, w.PendingEmail(), code, thibis.OTPPurposeSignup)
	if err != nil {
		return nil, err
	}

	w.step = StepDone
	c.Logger.Info("account verified", "user_id", session.UserID())
	return session, nil
}

// uploadPhoto stores the file under <folder><unix-ms>-<draft uuid>.<ext> and
// returns the stored path.
func (c *Controller) uploadPhoto(ctx context.Context, folder, draftUUID string, file *domain.FileUpload) (string, error) {
	ext := filepath.Ext(file.Name)
	path := folder + strconv.FormatInt(c.now().UnixMilli(), 10) + "-" + draftUUID + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.Objects.Upload(ctx, c.Bucket, path, contentType, bytes.NewReader(file.Data))
}
