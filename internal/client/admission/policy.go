// Package admission implements the one-account-per-device gate applied during
// sign-up. The check is a client-side deterrent against casual
// multi-accounting: local storage is user-controlled and clearable, so it is
// documented as best-effort, never as a security boundary.
package admission

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/thibis/thibis/internal/client/registry"
)

// State is the admission decision for the current sign-up attempt.
type State int

const (
	// StateChecking is the initial state while the fingerprint is computed.
	StateChecking State = iota
	// StateBlocked renders the block screen; no transition out without
	// leaving the flow.
	StateBlocked
	// StateAllowed proceeds to the sign-up wizard.
	StateAllowed
)

func (s State) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateAllowed:
		return "allowed"
	default:
		return "checking"
	}
}

// ErrDeviceLimit is the policy violation raised when a second account is
// attempted from a device that already created one.
var ErrDeviceLimit = errors.New("admission: this device already has a registered account; only one account per device is permitted")

type Policy struct {
	Registry *registry.Registry
	Logger   *slog.Logger
}

// Evaluate decides Blocked or Allowed when the sign-up flow loads, once the
// device id is known. A device is blocked when accounts were already created
// from this installation but the current id is not among the registered
// devices. Registry read failures degrade to Allowed: the strict submit-time
// check still applies.
func (p *Policy) Evaluate(ctx context.Context, deviceID string) State {
	emails, err := p.Registry.DeviceEmails(ctx)
	if err != nil {
		p.logger().Warn("admission check degraded to allow", "error", err)
		return StateAllowed
	}
	if len(emails) == 0 {
		return StateAllowed
	}

	registered, err := p.Registry.IsDeviceRegistered(ctx, deviceID)
	if err != nil {
		p.logger().Warn("admission check degraded to allow", "error", err)
		return StateAllowed
	}
	if !registered {
		return StateBlocked
	}
	return StateAllowed
}

// Authorize re-validates the policy at submission time with the stricter
// rule: once any email is recorded for this device, only that email may sign
// up again. This covers the list changing between page load and submit (for
// example a second concurrent flow). On success it records the email and the
// device id, idempotently; this is the only path that mutates the registry,
// and it runs only after the rejection check passed.
func (p *Policy) Authorize(ctx context.Context, deviceID, email string) error {
	emails, err := p.Registry.DeviceEmails(ctx)
	if err != nil {
		return err
	}

	if len(emails) > 0 && !slices.Contains(emails, email) {
		return ErrDeviceLimit
	}

	if err := p.Registry.AppendDeviceEmail(ctx, email); err != nil {
		return err
	}
	return p.Registry.RegisterDevice(ctx, deviceID)
}

func (p *Policy) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
