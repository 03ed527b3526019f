// Package account drives the sign-up wizard: an explicit step machine over a
// draft, with the admission, password and upload checks applied at submit.
package account

import (
	"errors"

	"github.com/google/uuid"

	"github.com/thibis/thibis/internal/client/domain"
)

// Step is a stage of the sign-up wizard.
type Step int

const (
	StepPhotos Step = iota
	StepPersonalInfo
	StepCredentials
	StepOtpPending
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepPhotos:
		return "photos"
	case StepPersonalInfo:
		return "personal_info"
	case StepCredentials:
		return "credentials"
	case StepOtpPending:
		return "otp_pending"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

var (
	ErrPhotosRequired       = errors.New("profile and document photos are required")
	ErrPersonalInfoRequired = errors.New("full name, username and gender are required")
	ErrWrongStep            = errors.New("operation not valid in current step")
)

// Wizard is the sign-up step machine. It is single-threaded: one wizard per
// sign-up attempt, driven by one caller.
type Wizard struct {
	step  Step
	draft domain.SignUpDraft

	// pendingEmail is set when the wizard reaches OtpPending and is the
	// address the verification code was mailed to.
	pendingEmail string
}

// NewWizard starts a fresh sign-up attempt on the photos step. The draft
// carries a newly generated account code.
func NewWizard() *Wizard {
	return &Wizard{
		step:  StepPhotos,
		draft: domain.SignUpDraft{UUID: uuid.NewString()},
	}
}

// Step returns the current wizard step.
func (w *Wizard) Step() Step { return w.step }

// Draft returns a pointer to the draft for form binding. Mutating it does not
// advance the wizard; Next applies the guards.
func (w *Wizard) Draft() *domain.SignUpDraft { return &w.draft }

// PendingEmail returns the address awaiting OTP verification, empty before
// the wizard reaches OtpPending.
func (w *Wizard) PendingEmail() string { return w.pendingEmail }

// Next advances one step, enforcing the guard of the step being left.
// Credentials is left through Controller.Submit, not Next.
func (w *Wizard) Next() error {
	switch w.step {
	case StepPhotos:
		if w.draft.ProfilePhoto == nil || w.draft.DocumentPhoto == nil {
			return ErrPhotosRequired
		}
		w.step = StepPersonalInfo
	case StepPersonalInfo:
		if w.draft.FullName == "" || w.draft.Username == "" || w.draft.Gender == "" {
			return ErrPersonalInfoRequired
		}
		w.step = StepCredentials
	default:
		return ErrWrongStep
	}
	return nil
}

// Back returns to the previous form step. Draft state is kept.
func (w *Wizard) Back() error {
	switch w.step {
	case StepPersonalInfo:
		w.step = StepPhotos
	case StepCredentials:
		w.step = StepPersonalInfo
	default:
		return ErrWrongStep
	}
	return nil
}
