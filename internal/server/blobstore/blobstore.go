// Package blobstore adapts an S3-compatible object store to the contract the
// file lifecycle needs: put bytes under a key, presign a download URL, and
// delete by locator. A locator is an opaque URL of the form
// <base-endpoint>/<bucket>/<key> stored in the ledger alongside the metadata.
package blobstore

import (
	"context"
	"io"
)

type Store interface {
	// Put uploads body under key and returns the locator. Keys carry a fresh
	// random suffix per call, so an existing object under the same key is an
	// invariant violation, not an overwrite to tolerate.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)

	// PresignGet returns a temporary URL from which the object behind the
	// locator can be fetched.
	PresignGet(ctx context.Context, locator string) (string, error)

	// Delete removes the object behind the locator. A missing object is not
	// an error; transport failures are.
	Delete(ctx context.Context, locator string) error
}
