package helix

import (
	"context"
	"sync"
)

// SignatureStore persists memoized signatures.
//
// Implementations must be safe for concurrent use. Get reports found=false
// for keys that were never stored; expiry is decided by the caller.
type SignatureStore interface {
	Get(ctx context.Context, key SignatureKey) (CachedSignature, bool, error)
	Set(ctx context.Context, key SignatureKey, sig CachedSignature) error
}

// MemoryStore keeps signatures in process memory. Entries are never evicted;
// an expired entry is simply overwritten by the next refresh.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[SignatureKey]CachedSignature
}

// NewMemoryStore creates an empty in-memory signature store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[SignatureKey]CachedSignature)}
}

func (s *MemoryStore) Get(_ context.Context, key SignatureKey) (CachedSignature, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.entries[key]
	return sig, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key SignatureKey, sig CachedSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = sig
	return nil
}

// Len returns the number of cached entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
