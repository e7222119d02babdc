package kowari

import (
	"math"
	"testing"

	"github.com/kowari-db/kowari/kerrors"
)

func TestMemoryStoreInsertAndGet(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Insert(Vector{ID: "a", Data: []float32{1, 2}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "a" || len(got.Data) != 2 {
		t.Errorf("Get(a) = %+v, want {a [1 2]}", got)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get("missing"); !kerrors.Is(err, kerrors.NotFound) {
		t.Errorf("Get(missing) = %v, want NotFound", err)
	}
}

func TestMemoryStoreDuplicateInsert(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Insert(Vector{ID: "a", Data: []float32{1, 2}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(Vector{ID: "a", Data: []float32{3, 4}}); !kerrors.Is(err, kerrors.DuplicateID) {
		t.Errorf("Insert(duplicate) = %v, want DuplicateID", err)
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Insert(Vector{ID: "a", Data: []float32{1, 2}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(Vector{ID: "b", Data: []float32{1, 2, 3}}); !kerrors.Is(err, kerrors.DimensionMismatch) {
		t.Errorf("Insert(mismatched dim) = %v, want DimensionMismatch", err)
	}
}

func TestMemoryStoreNonFiniteRejected(t *testing.T) {
	s := NewMemoryStore()
	bad := Vector{ID: "a", Data: []float32{1, float32(math.NaN())}}
	if err := s.Insert(bad); !kerrors.Is(err, kerrors.InvalidArgument) {
		t.Errorf("Insert(NaN) = %v, want InvalidArgument", err)
	}
}

func TestMemoryStoreAllVectors(t *testing.T) {
	s := NewMemoryStore()
	want := map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}
	for id, data := range want {
		if err := s.Insert(Vector{ID: id, Data: data}); err != nil {
			t.Fatalf("Insert(%s): %v", id, err)
		}
	}
	got, err := s.AllVectors()
	if err != nil {
		t.Fatalf("AllVectors: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("AllVectors returned %d vectors, want %d", len(got), len(want))
	}
	for _, v := range got {
		if _, ok := want[v.ID]; !ok {
			t.Errorf("AllVectors returned unexpected id %q", v.ID)
		}
	}
}
