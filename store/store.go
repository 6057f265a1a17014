package store

import (
	"context"
	"errors"
)

// BlobStore is a whole-file content store addressed by path. Fetch returns
// the blob's revision token; a later Put to the same path must present that
// token to overwrite it, so a concurrent writer surfaces as
// ErrRevisionMismatch instead of being silently clobbered.
type BlobStore interface {
	Fetch(ctx context.Context, path string) (content []byte, revision string, err error)
	Put(ctx context.Context, path string, content []byte, commitMessage string, revision string) error
}

var (
	ErrBlobNotFound     = errors.New("blob does not exist")
	ErrRevisionMismatch = errors.New("blob revision does not match")
	ErrMissingToken     = errors.New("access token is not configured")
)
