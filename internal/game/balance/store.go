package balance

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Store publishes validated Balance snapshots. Readers take one Snapshot per
// round and never observe a partially-updated configuration.
type Store struct {
	current atomic.Pointer[Balance]
}

// NewStore creates a Store holding b.
//
// Precondition: b must not be nil.
// Postcondition: returns a Store or the validation error for b.
func NewStore(b *Balance) (*Store, error) {
	if b == nil {
		return nil, errors.New("balance must not be nil")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(b)
	return s, nil
}

// Snapshot returns the current Balance. Callers must not mutate it.
func (s *Store) Snapshot() *Balance {
	return s.current.Load()
}

// Replace validates b and publishes it for subsequent rounds. A round already
// in progress keeps the snapshot it started with.
func (s *Store) Replace(b *Balance) error {
	if b == nil {
		return errors.New("balance must not be nil")
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("replacing balance: %w", err)
	}
	s.current.Store(b)
	return nil
}

// Reload reads path and publishes it.
func (s *Store) Reload(path string) error {
	b, err := LoadFile(path)
	if err != nil {
		return err
	}
	return s.Replace(b)
}
