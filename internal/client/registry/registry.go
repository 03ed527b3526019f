package registry

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/thibis/thibis/internal/client/domain"
)

// Storage keys. Values are plain JSON with no schema versioning; the user
// clearing local data wipes all three together.
const (
	keyFingerprint       = "thibis_device_fp"
	keyRegisteredDevices = "thibis_registered_devices"
	keyDeviceEmails      = "thibis_device_emails"
)

type Registry struct {
	kv KV
}

func New(kv KV) *Registry {
	return &Registry{kv: kv}
}

// Fingerprint returns the persisted fingerprint snapshot. ok is false when no
// snapshot exists or the stored value is unreadable.
func (r *Registry) Fingerprint(ctx context.Context) (fp domain.DeviceFingerprint, ok bool, err error) {
	raw, err := r.kv.Get(ctx, keyFingerprint)
	if errors.Is(err, ErrNotFound) {
		return domain.DeviceFingerprint{}, false, nil
	}
	if err != nil {
		return domain.DeviceFingerprint{}, false, err
	}

	if err := json.Unmarshal(raw, &fp); err != nil {
		// Corrupt snapshot: behave as if none existed.
		return domain.DeviceFingerprint{}, false, nil
	}
	return fp, true, nil
}

// SaveFingerprint replaces the persisted snapshot.
func (r *Registry) SaveFingerprint(ctx context.Context, fp domain.DeviceFingerprint) error {
	raw, err := json.Marshal(fp)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, keyFingerprint, raw)
}

// IsDeviceRegistered reports whether id was ever registered on this
// installation.
func (r *Registry) IsDeviceRegistered(ctx context.Context, id string) (bool, error) {
	devices, err := r.stringList(ctx, keyRegisteredDevices)
	if err != nil {
		return false, err
	}
	return slices.Contains(devices, id), nil
}

// RegisterDevice inserts id into the registered-device set. Inserting an
// already present id is a no-op.
func (r *Registry) RegisterDevice(ctx context.Context, id string) error {
	return r.appendUnique(ctx, keyRegisteredDevices, id)
}

// DeviceEmails returns, in insertion order, the account emails ever created
// from this installation. Entries are never removed automatically; under the
// one-account-per-device policy the list is intended to hold at most one.
func (r *Registry) DeviceEmails(ctx context.Context) ([]string, error) {
	return r.stringList(ctx, keyDeviceEmails)
}

// AppendDeviceEmail records email against this installation, idempotently.
func (r *Registry) AppendDeviceEmail(ctx context.Context, email string) error {
	return r.appendUnique(ctx, keyDeviceEmails, email)
}

// stringList loads a JSON string array. Missing or unparsable values degrade
// to an empty list so admission checks fail open rather than crash.
func (r *Registry) stringList(ctx context.Context, key string) ([]string, error) {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, nil
	}
	return list, nil
}

func (r *Registry) appendUnique(ctx context.Context, key, value string) error {
	list, err := r.stringList(ctx, key)
	if err != nil {
		return err
	}
	if slices.Contains(list, value) {
		return nil
	}

	raw, err := json.Marshal(append(list, value))
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, key, raw)
}
