// Package blobkv stores state documents as JSON objects in a blob store, one
// object per key. It lets state live next to exports on a filesystem or in S3.
package blobkv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"nutriplan/internal/blob"
)

// Driver is the identifier reported by Store.Driver.
const Driver = "blob"

// DefaultPrefix is the object key prefix used when none is configured.
const DefaultPrefix = "state/"

// Store adapts a blob.Store to the key-value state contract.
type Store struct {
	blobs  blob.Store
	prefix string
}

// New wraps blobs. Objects are written under prefix + key + ".json".
func New(blobs blob.Store, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{blobs: blobs, prefix: prefix}
}

// Driver reports the backend identifier including the blob driver, e.g. "blob/s3".
func (s *Store) Driver() string { return Driver + "/" + string(s.blobs.Driver()) }

// ObjectKey returns the blob key used for a state key.
func (s *Store) ObjectKey(key string) string { return s.prefix + key + ".json" }

// Get reads the object for key. A missing object is not an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_, rc, err := s.blobs.Get(ctx, s.ObjectKey(key))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}

// Set overwrites the object for key.
func (s *Store) Set(ctx context.Context, key string, payload []byte) error {
	_, err := s.blobs.Put(ctx, s.ObjectKey(key), bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"state-key": key},
		Overwrite:   true,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; blob stores hold no process resources.
func (s *Store) Close() error { return nil }
