package domain

import "context"

// StateStore is the key-value persistence contract consumed by the stores.
// Each store serializes its entire state under one fixed key.
type StateStore interface {
	// Get returns the payload stored under key. ok is false when nothing has
	// been stored yet; that is not an error.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Set replaces the payload stored under key.
	Set(ctx context.Context, key string, payload []byte) error
	// Close releases backend resources.
	Close() error
}
