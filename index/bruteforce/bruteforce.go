// Package bruteforce implements the linear-scan reference index: an exact,
// O(N·dim) per query nearest-neighbor search that doubles as the recall
// oracle for the approximate indexes.
package bruteforce

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kowari-db/kowari/core"
	"github.com/kowari-db/kowari/index"
	"github.com/kowari-db/kowari/kerrors"
)

type entry struct {
	id     string
	vector []float32
}

// Index is the brute-force nearest-neighbor index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	built     bool
}

// New creates an empty brute-force index.
func New() *Index {
	return &Index{}
}

func validate(entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Vector)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Vector) != dim {
			return kerrors.DimensionMismatchf(dim, len(e.Vector))
		}
		if !core.AllFinite(e.Vector) {
			return kerrors.InvalidArgumentf("vector %q contains a non-finite component", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return kerrors.DuplicateIDf(e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Build stores entries verbatim. See index.Index for the failure modes.
func (bf *Index) Build(entries []index.Entry) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.built {
		return kerrors.AlreadyBuiltErr()
	}
	if err := validate(entries); err != nil {
		return err
	}

	out := make([]entry, len(entries))
	dim := 0
	if len(entries) > 0 {
		dim = len(entries[0].Vector)
	}
	for i, e := range entries {
		out[i] = entry{id: e.ID, vector: e.Vector}
	}

	bf.dimension = dim
	bf.entries = out
	bf.built = true
	log.Info().Int("count", len(out)).Int("dim", dim).Msg("brute-force index built")
	return nil
}

type scored struct {
	id  string
	sim float64
}

// Search computes cosine similarity against every indexed vector and
// returns the top k, ties broken by ascending id.
func (bf *Index) Search(query []float32, k int) ([]string, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	if !bf.built {
		return nil, kerrors.NotBuiltErr()
	}
	if k == 0 {
		return nil, kerrors.InvalidArgumentf("k must be greater than 0")
	}
	if len(bf.entries) > 0 && len(query) != bf.dimension {
		return nil, kerrors.DimensionMismatchf(bf.dimension, len(query))
	}
	if !core.AllFinite(query) {
		return nil, kerrors.InvalidArgumentf("query contains a non-finite component")
	}

	results := make([]scored, 0, len(bf.entries))
	for _, e := range bf.entries {
		sim, err := core.Cosine(query, e.vector)
		if err != nil {
			return nil, err
		}
		results = append(results, scored{id: e.id, sim: sim})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].sim == results[j].sim {
			return results[i].id < results[j].id
		}
		return results[i].sim > results[j].sim
	})

	if k > len(results) {
		k = len(results)
	}
	ids := make([]string, k)
	for i := 0; i < k; i++ {
		ids[i] = results[i].id
	}
	return ids, nil
}

var _ index.Index = (*Index)(nil)
