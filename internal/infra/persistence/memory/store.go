// Package memory provides a process-local key-value state store used by tests
// and by runs that opt out of durable storage.
package memory

import (
	"context"
	"errors"
	"sync"
)

// Driver is the identifier reported by Store.Driver.
const Driver = "memory"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("memory state store closed")

// Store keeps payloads in a map. Payloads are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New returns an empty in-memory store.
func New() *Store { return &Store{data: make(map[string][]byte)} }

// Driver reports the backend identifier.
func (s *Store) Driver() string { return Driver }

// Get returns a copy of the payload stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set replaces the payload stored under key.
func (s *Store) Set(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = append([]byte(nil), payload...)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close marks the store closed. Stored data is dropped.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}
