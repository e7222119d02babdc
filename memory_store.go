package kowari

import (
	"sync"

	"github.com/kowari-db/kowari/core"
	"github.com/kowari-db/kowari/kerrors"
)

// MemoryStore is a map-backed, in-process implementation of Storage. It
// guards its map with a sync.RWMutex since, unlike a built index, it may
// be populated incrementally before a build snapshot is taken via
// AllVectors.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string]Vector
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string]Vector)}
}

// AllVectors returns a snapshot of every stored vector. The order is
// unspecified; callers that need a deterministic build order should sort
// the result themselves.
func (m *MemoryStore) AllVectors() ([]Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Vector, 0, len(m.vectors))
	for _, v := range m.vectors {
		out = append(out, v)
	}
	return out, nil
}

// Get looks up a vector by id.
func (m *MemoryStore) Get(id string) (Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vectors[id]
	if !ok {
		return Vector{}, kerrors.NotFoundf(id)
	}
	return v, nil
}

// Insert appends v to the store.
func (m *MemoryStore) Insert(v Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !core.AllFinite(v.Data) {
		return kerrors.InvalidArgumentf("vector %q contains a non-finite component", v.ID)
	}
	if _, exists := m.vectors[v.ID]; exists {
		return kerrors.DuplicateIDf(v.ID)
	}
	if len(m.vectors) > 0 && len(v.Data) != m.dim {
		return kerrors.DimensionMismatchf(m.dim, len(v.Data))
	}
	if len(m.vectors) == 0 {
		m.dim = len(v.Data)
	}
	m.vectors[v.ID] = v
	return nil
}

var _ Storage = (*MemoryStore)(nil)
