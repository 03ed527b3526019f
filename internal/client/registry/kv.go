// Package registry persists what this installation knows about itself: the
// last fingerprint snapshot, the set of device ids registered here and the
// account emails created from here. Storage sits behind a small key/value
// port so drivers can be swapped (sqlite for the real client, memory for
// tests).
package registry

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get for keys that were never written.
var ErrNotFound = errors.New("registry: key not found")

// KV is the storage port. Values are JSON documents; the registry owns their
// shape and treats unreadable values as absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
