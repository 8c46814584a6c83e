// Package cache implements the layered in-memory forecast cache: positive
// entries with per-endpoint freshness horizons, negative entries that
// suppress refetching after a failure, and single-flight deduplication of
// concurrent upstream calls.
//
// Entries never drop their last successful payload when freshness lapses;
// a decayed entry is served as stale when the upstream cannot produce
// anything newer. Only the retention sweep removes payloads outright.
package cache

import (
	"fmt"
	"sync"
	"time"

	"firstlight/internal/types"
)

// Key addresses one cache entry: a provider endpoint crossed with a
// coordinate grid cell. Points that share a cell share the entry.
type Key struct {
	Endpoint types.Endpoint
	Cell     string
}

// String renders the key in "endpoint|cell" form for flight grouping and logs.
func (k Key) String() string {
	return fmt.Sprintf("%s|%s", k.Endpoint, k.Cell)
}

// Snapshot is the observable state of one entry at read time. Document is
// non-nil whenever any payload exists, fresh or stale. LastErr carries the
// failure behind an active negative window.
type Snapshot struct {
	State      types.EntryState
	Document   *types.ProviderDocument
	FetchedAt  time.Time
	FreshUntil time.Time
	LastErr    error
}

// HasPayload reports whether the entry holds any servable document.
func (s Snapshot) HasPayload() bool { return s.Document != nil }

type entry struct {
	doc        *types.ProviderDocument
	fetchedAt  time.Time
	freshUntil time.Time

	failUntil time.Time
	failErr   error
}

// Store is a concurrency-safe in-memory cache for provider documents.
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu    sync.RWMutex
	data  map[Key]*entry
	clock types.Clock

	// maxAge bounds how long a stale payload is retained before the
	// sweep discards it. Zero disables age-based eviction.
	maxAge time.Duration
}

// NewStore creates a Store. A nil clock falls back to the real UTC clock.
// maxAge bounds stale payload retention; <= 0 retains indefinitely.
func NewStore(clock types.Clock, maxAge time.Duration) *Store {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &Store{
		data:   make(map[Key]*entry),
		clock:  clock,
		maxAge: maxAge,
	}
}

// Lookup returns the current snapshot for a key. The state resolution
// order is: fresh payload, active negative window, stale payload, empty.
// A key can simultaneously hold a stale payload and a negative window;
// the negative state wins so callers skip the network, then fall back to
// the stale payload the snapshot still carries.
func (s *Store) Lookup(key Key) Snapshot {
	now := s.clock.Now()

	s.mu.RLock()
	e, ok := s.data[key]
	if !ok {
		s.mu.RUnlock()
		return Snapshot{State: types.EntryEmpty}
	}
	snap := Snapshot{
		Document:   e.doc,
		FetchedAt:  e.fetchedAt,
		FreshUntil: e.freshUntil,
		LastErr:    e.failErr,
	}
	failActive := now.Before(e.failUntil)
	s.mu.RUnlock()

	switch {
	case snap.Document != nil && now.Before(snap.FreshUntil):
		snap.State = types.EntryFresh
	case failActive:
		snap.State = types.EntryFailedRecent
	case snap.Document != nil:
		snap.State = types.EntryStale
	default:
		snap.State = types.EntryEmpty
	}
	if snap.State != types.EntryFailedRecent {
		snap.LastErr = nil
	}
	return snap
}

// StoreSuccess records a successful fetch: the payload becomes the entry's
// document, the freshness horizon restarts, and any negative window clears.
func (s *Store) StoreSuccess(key Key, doc *types.ProviderDocument, ttl time.Duration) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		e = &entry{}
		s.data[key] = e
	}
	e.doc = doc
	e.fetchedAt = now
	e.freshUntil = now.Add(ttl)
	e.failUntil = time.Time{}
	e.failErr = nil
}

// StoreFailure opens a negative window for the key. Any existing payload
// is retained for stale fallback.
func (s *Store) StoreFailure(key Key, cause error, ttl time.Duration) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		e = &entry{}
		s.data[key] = e
	}
	e.failUntil = now.Add(ttl)
	e.failErr = cause
}

// Sweep removes entries whose payload has aged past the retention bound
// and which have no active negative window. Returns the number removed.
func (s *Store) Sweep() int {
	if s.maxAge <= 0 {
		return 0
	}
	now := s.clock.Now()
	cutoff := now.Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.data {
		if now.Before(e.failUntil) {
			continue
		}
		if e.doc == nil || e.fetchedAt.Before(cutoff) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
