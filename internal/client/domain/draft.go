package domain

// FileUpload is a pending file attachment on a sign-up draft.
type FileUpload struct {
	Name string // original filename, extension is kept for the stored path
	Data []byte
}

// SignUpDraft is the in-progress sign-up form state. It lives only for the
// duration of the wizard and is discarded on success or navigation away.
type SignUpDraft struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
	Username        string
	Gender          string

	ProfilePhoto  *FileUpload
	DocumentPhoto *FileUpload

	// UUID is the opaque account code generated when the draft is created.
	UUID string
}
