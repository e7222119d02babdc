package kowari

import (
	"testing"

	"github.com/kowari-db/kowari/index"
	"github.com/kowari-db/kowari/kerrors"
)

func triangleStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	for _, v := range []Vector{
		{ID: "a", Data: []float32{1, 0}},
		{ID: "b", Data: []float32{0, 1}},
		{ID: "c", Data: []float32{1, 1}},
	} {
		if err := s.Insert(v); err != nil {
			t.Fatalf("Insert(%s): %v", v.ID, err)
		}
	}
	return s
}

func buildFromStore(t *testing.T, s *MemoryStore, idx index.Index) {
	t.Helper()
	vecs, err := s.AllVectors()
	if err != nil {
		t.Fatalf("AllVectors: %v", err)
	}
	entries := make([]index.Entry, len(vecs))
	for i, v := range vecs {
		entries[i] = index.Entry{ID: v.ID, Vector: v.Data}
	}
	if err := idx.Build(entries); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestQueryEngineSearchBruteForce(t *testing.T) {
	store := triangleStore(t)
	idx := BruteForce()
	buildFromStore(t, store, idx)

	engine := NewQueryEngine(store, idx)
	got, err := engine.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search = %v, want 2 results", got)
	}
	want := []string{"a", "c"}
	for i, v := range got {
		if v.ID != want[i] {
			t.Errorf("result[%d].ID = %q, want %q", i, v.ID, want[i])
		}
		if len(v.Data) != 2 {
			t.Errorf("result[%d].Data = %v, want resolved 2-d vector", i, v.Data)
		}
	}
}

func TestQueryEngineDivergenceIsNotFound(t *testing.T) {
	store := triangleStore(t)
	idx := BruteForce()
	buildFromStore(t, store, idx)

	// Build a second store missing id "a" to simulate index/storage
	// divergence: the index still returns "a" as a candidate but the
	// bound storage no longer has it.
	shortStore := NewMemoryStore()
	if err := shortStore.Insert(Vector{ID: "b", Data: []float32{0, 1}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := shortStore.Insert(Vector{ID: "c", Data: []float32{1, 1}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	engine := NewQueryEngine(shortStore, idx)
	if _, err := engine.Search([]float32{1, 0}, 1); !kerrors.Is(err, kerrors.NotFound) {
		t.Errorf("Search with divergent storage = %v, want NotFound", err)
	}
}

func TestQueryEnginePropagatesDimensionMismatch(t *testing.T) {
	store := triangleStore(t)
	idx := BruteForce()
	buildFromStore(t, store, idx)

	engine := NewQueryEngine(store, idx)
	if _, err := engine.Search([]float32{1, 0, 0}, 1); !kerrors.Is(err, kerrors.DimensionMismatch) {
		t.Errorf("Search with bad dim = %v, want DimensionMismatch", err)
	}
}

func TestQueryEngineWithHNSW(t *testing.T) {
	store := triangleStore(t)
	idx := HNSW(16, 32, 1)
	buildFromStore(t, store, idx)

	engine := NewQueryEngine(store, idx)
	got, err := engine.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Search = %v, want [b]", got)
	}
}

func TestQueryEngineWithLSH(t *testing.T) {
	store := triangleStore(t)
	idx := LSH(8, 2, 1)
	buildFromStore(t, store, idx)

	engine := NewQueryEngine(store, idx)
	got, err := engine.Search([]float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Search = %v, want 3 results", got)
	}
}
