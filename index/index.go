// Package index defines the capability set every nearest-neighbor index
// variant satisfies, so the query engine can stay polymorphic over
// {bruteforce, lsh, hnsw} rather than holding a concrete variant.
package index

// Entry is a single (id, vector) pair supplied to Build.
type Entry struct {
	ID     string
	Vector []float32
}

// Index is the uniform capability set every variant exposes: build once,
// then search any number of times.
//
// Build must be called exactly once. Once it returns successfully the
// index is immutable for the rest of its lifetime, and concurrent Search
// calls are safe without external synchronization.
type Index interface {
	// Build constructs the index from entries. It fails if Build has
	// already succeeded on this index, if two entries share an id, if any
	// vector's dimension disagrees with the first vector's dimension, or
	// if any vector contains a non-finite component. A failed Build does
	// not consume the single build attempt: the index remains unbuilt and
	// a corrected call may still succeed.
	Build(entries []Entry) error

	// Search returns up to k identifiers ranked by descending cosine
	// similarity to query, ties broken by ascending id. It fails if Build
	// has not been called, if query's dimension disagrees with the
	// index's dimension, if query contains a non-finite component, or if
	// k == 0.
	Search(query []float32, k int) ([]string, error)
}
