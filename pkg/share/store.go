package share

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// HandleStore maps short opaque handle values to signed grants. The store
// is shared mutable state touched by every in-flight request, so
// implementations must be safe for concurrent use. Absence is reported as
// a boolean, never as an error: callers turn it into an authorization
// failure.
type HandleStore interface {
	// Add inserts the handle only if the value is not already live,
	// returning ErrHandleExists otherwise. The check and the insert are
	// atomic so that two concurrent issuances cannot claim the same value.
	Add(value string, signedGrant string, expiresAt time.Time) error
	// Get returns the signed grant and expiry for a live handle. Expired
	// entries are treated as absent and removed eagerly.
	Get(value string) (signedGrant string, expiresAt time.Time, ok bool)
	Delete(value string)
	Exists(value string) bool
}

type handleEntry struct {
	SignedGrant string
	ExpiresAt   time.Time
}

// MemoryHandleStore keeps handles in-process. Entries expire lazily on read
// and a background janitor sweeps the map on the configured interval, so
// abandoned tokens do not grow memory without bound. A process restart
// invalidates all outstanding share links.
type MemoryHandleStore struct {
	cache *gocache.Cache
}

func NewMemoryHandleStore(defaultLifetime time.Duration, sweepInterval time.Duration) *MemoryHandleStore {
	return &MemoryHandleStore{
		cache: gocache.New(defaultLifetime, sweepInterval),
	}
}

func (s *MemoryHandleStore) Add(value string, signedGrant string, expiresAt time.Time) error {
	entry := handleEntry{SignedGrant: signedGrant, ExpiresAt: expiresAt}
	if err := s.cache.Add(value, entry, time.Until(expiresAt)); err != nil {
		return ErrHandleExists
	}
	return nil
}

func (s *MemoryHandleStore) Get(value string) (string, time.Time, bool) {
	item, found := s.cache.Get(value)
	if !found {
		return "", time.Time{}, false
	}
	entry := item.(handleEntry)
	if !time.Now().Before(entry.ExpiresAt) {
		s.cache.Delete(value)
		return "", time.Time{}, false
	}
	return entry.SignedGrant, entry.ExpiresAt, true
}

func (s *MemoryHandleStore) Delete(value string) {
	s.cache.Delete(value)
}

func (s *MemoryHandleStore) Exists(value string) bool {
	_, found := s.cache.Get(value)
	return found
}
