// Package storage uploads user media to the Thibis object store. The sign-up
// wizard sends profile and identity photos here before account creation.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrUploadFailed = errors.New("upload failed")

// ObjectStore is the write-side port onto a bucketed blob store.
type ObjectStore interface {
	// Upload writes the object and returns the path it was stored under.
	Upload(ctx context.Context, bucket, path string, contentType string, r io.Reader) (string, error)
}
