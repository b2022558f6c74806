package checkpoint

import (
	"sync"

	"github.com/0xknxwledge/lvrctl/internal/domain"
)

type key struct {
	pool    domain.Pool
	markout domain.MarkoutTime
}

// Store is a concurrent map of (pool, markout) -> *Checkpoint, mirroring
// the teacher's sharded-map pattern but backed by a single RWMutex since
// the key space (pools × markouts) is small and bounded at startup.
type Store struct {
	mu   sync.RWMutex
	data map[key]*Checkpoint
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: make(map[key]*Checkpoint)}
}

// GetOrCreate returns the checkpoint for (pool, markout), creating it under
// the write lock on first access.
func (s *Store) GetOrCreate(pool domain.Pool, markout domain.MarkoutTime) *Checkpoint {
	k := key{pool: pool, markout: markout}

	s.mu.RLock()
	cp, ok := s.data[k]
	s.mu.RUnlock()
	if ok {
		return cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cp, ok := s.data[k]; ok {
		return cp
	}
	cp = New(pool, markout)
	s.data[k] = cp
	return cp
}

// All returns every checkpoint currently in the store. Order is
// unspecified; callers that need a stable write order should sort the
// result.
func (s *Store) All() []*Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Checkpoint, 0, len(s.data))
	for _, cp := range s.data {
		out = append(out, cp)
	}
	return out
}

// FinalizeAll finalizes every checkpoint's digest under its tighter final
// compression parameter.
func (s *Store) FinalizeAll() {
	for _, cp := range s.All() {
		cp.Finalize()
	}
}

// Snapshots returns a Snapshot for every checkpoint in the store.
func (s *Store) Snapshots() []Snapshot {
	all := s.All()
	out := make([]Snapshot, len(all))
	for i, cp := range all {
		out[i] = cp.Snapshot()
	}
	return out
}
