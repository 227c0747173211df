package repository

import (
	"context"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Keys of the per-browser persisted values.
const (
	KeyToken = "token"
	KeyRole  = "userRole"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// StateStore holds the persisted client state of each browser session,
// namespaced by session id. It replaces browser-local storage: values are
// opaque bytes and there is no locking across concurrent writers (last write wins).
type StateStore interface {
	// Get returns ErrNotFound when the key was never set or has been deleted.
	Get(ctx context.Context, sid, key string) ([]byte, error)
	Set(ctx context.Context, sid, key string, value []byte) error
	// Delete removes the given keys; missing keys are not an error.
	Delete(ctx context.Context, sid string, keys ...string) error
}
