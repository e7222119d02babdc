// Package kowari is a local, embeddable vector database: given a
// collection of fixed-dimensional vectors with opaque identifiers, it
// answers approximate and exact k-nearest-neighbor queries under cosine
// similarity. This package binds the index variants under index/ to a
// storage backend and exposes the query engine and top-level index
// constructors so callers never need to import the index/* subpackages
// directly.
package kowari

import (
	"github.com/kowari-db/kowari/index"
	"github.com/kowari-db/kowari/index/bruteforce"
	"github.com/kowari-db/kowari/index/hnsw"
	"github.com/kowari-db/kowari/index/lsh"
)

// Vector is an immutable (id, data) pair: id is a stable opaque identifier,
// globally unique within a database, and Data is an ordered sequence of
// finite float32 components. All vectors in one database share the same
// dimension.
type Vector struct {
	ID   string
	Data []float32
}

// BruteForce constructs an empty exact-search index: a linear scan over
// every indexed vector, ranked by cosine similarity. It serves as the
// recall oracle for the approximate variants.
func BruteForce() index.Index {
	return bruteforce.New()
}

// LSH constructs an empty random-hyperplane locality-sensitive-hashing
// index with numHyperplanes-bit signatures across numTables independent
// tables. seed, when provided, fixes the hyperplane draw for reproducible
// builds.
func LSH(numHyperplanes, numTables int, seed ...int64) index.Index {
	return lsh.New(numHyperplanes, numTables, seed...)
}

// HNSW constructs an empty multi-layer proximity-graph index with target
// out-degree m and construction-time candidate width efConstruction. seed,
// when provided, fixes level sampling for reproducible builds.
func HNSW(m, efConstruction int, seed ...int64) index.Index {
	return hnsw.New(m, efConstruction, seed...)
}
