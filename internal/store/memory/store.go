// Package memory provides an in-memory store provider for tests and local
// development.
package memory

import (
	"context"
	"sync"

	"github.com/salambumi/property-edge/internal/listing"
	"github.com/salambumi/property-edge/internal/store"
)

// Store keeps listings and leads in maps guarded by a mutex.
type Store struct {
	mu       sync.RWMutex
	listings map[string]listing.Listing
	leads    []store.Lead
	// FailLookups forces FetchByCode to return ErrLookupFailed, simulating
	// an unreachable backing store.
	FailLookups bool
}

// New creates an empty Store.
func New() *Store {
	return &Store{listings: make(map[string]listing.Listing)}
}

// Add registers a listing keyed by its code.
func (s *Store) Add(l listing.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.Code] = l
}

// FetchByCode implements store.Provider.
func (s *Store) FetchByCode(_ context.Context, code string) (listing.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailLookups {
		return listing.Listing{}, store.ErrLookupFailed
	}
	l, ok := s.listings[code]
	if !ok {
		return listing.Listing{}, store.ErrNotFound
	}
	return l, nil
}

// CreateLead implements store.Provider.
func (s *Store) CreateLead(_ context.Context, lead store.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = append(s.leads, lead)
	return nil
}

// ListLeads implements store.Provider.
func (s *Store) ListLeads(_ context.Context, limit int) ([]store.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.leads)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]store.Lead, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.leads[i])
	}
	return out, nil
}
