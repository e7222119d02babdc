// Package lsh implements an approximate nearest-neighbor index using
// locality-sensitive hashing over random hyperplanes: vectors that fall on
// the same side of enough hyperplanes land in the same bucket, so a bucket
// lookup approximates a cosine-similarity neighborhood.
package lsh

import (
	"math/bits"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kowari-db/kowari/core"
	"github.com/kowari-db/kowari/index"
	"github.com/kowari-db/kowari/kerrors"
)

// maxHyperplanes bounds NumHyperplanes so a signature fits in a uint64
// bitset.
const maxHyperplanes = 64

// signature is an H-bit fingerprint of a vector: bit h is 1 iff the vector
// fell on the positive side of hyperplane h.
type signature uint64

// Index is the random-hyperplane LSH index.
type Index struct {
	mu sync.RWMutex

	// NumHyperplanes is the signature width H, per table.
	NumHyperplanes int
	// NumTables is the number of independent hash tables T.
	NumTables int
	// RadiusCap bounds Hamming-distance bucket widening during Search.
	// Defaults to NumHyperplanes/2 and may be tuned before Build.
	RadiusCap int

	seed int64
	rng  *rand.Rand

	dim       int
	built     bool
	planes    [][][]float32         // [table][h], each a dim-length normal
	tables    []map[signature][]string // [table] signature -> ids sharing it
	allSigs   []map[signature]struct{} // [table] distinct signatures seen, for Hamming widening
	vectors   map[string][]float32   // id -> raw vector, for exact reranking
}

// New constructs an empty LSH index. seed, when provided, fixes the
// hyperplane draw for reproducible builds; when omitted a seed is chosen
// from core.GetSeed() and recorded on the index.
func New(numHyperplanes, numTables int, seed ...int64) *Index {
	s := core.GetSeed()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &Index{
		NumHyperplanes: numHyperplanes,
		NumTables:      numTables,
		RadiusCap:      numHyperplanes / 2,
		seed:           s,
		rng:            rand.New(rand.NewSource(s)),
	}
}

// Seed returns the seed used to draw this index's hyperplanes.
func (idx *Index) Seed() int64 {
	return idx.seed
}

func (idx *Index) validateConfig() error {
	if idx.NumHyperplanes <= 0 || idx.NumHyperplanes > maxHyperplanes {
		return kerrors.InvalidArgumentf("num_hyperplanes must be in (0, %d], got %d", maxHyperplanes, idx.NumHyperplanes)
	}
	if idx.NumTables <= 0 {
		return kerrors.InvalidArgumentf("num_tables must be positive, got %d", idx.NumTables)
	}
	if idx.RadiusCap < 0 {
		return kerrors.InvalidArgumentf("radius cap must be non-negative, got %d", idx.RadiusCap)
	}
	return nil
}

func validateEntries(entries []index.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	dim := len(entries[0].Vector)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Vector) != dim {
			return 0, kerrors.DimensionMismatchf(dim, len(e.Vector))
		}
		if !core.AllFinite(e.Vector) {
			return 0, kerrors.InvalidArgumentf("vector %q contains a non-finite component", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return 0, kerrors.DuplicateIDf(e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return dim, nil
}

// Build draws NumTables*NumHyperplanes random hyperplane normals from the
// index's seeded PRNG and buckets every entry by its per-table signature.
func (idx *Index) Build(entries []index.Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.built {
		return kerrors.AlreadyBuiltErr()
	}
	if err := idx.validateConfig(); err != nil {
		return err
	}
	dim, err := validateEntries(entries)
	if err != nil {
		return err
	}

	planes := make([][][]float32, idx.NumTables)
	for t := range planes {
		planes[t] = make([][]float32, idx.NumHyperplanes)
		for h := range planes[t] {
			normal := make([]float32, dim)
			for d := range normal {
				normal[d] = float32(idx.rng.NormFloat64())
			}
			planes[t][h] = normal
		}
	}

	tables := make([]map[signature][]string, idx.NumTables)
	allSigs := make([]map[signature]struct{}, idx.NumTables)
	for t := range tables {
		tables[t] = make(map[signature][]string)
		allSigs[t] = make(map[signature]struct{})
	}
	vectors := make(map[string][]float32, len(entries))

	for _, e := range entries {
		vectors[e.ID] = e.Vector
		for t := 0; t < idx.NumTables; t++ {
			sig := sign(e.Vector, planes[t])
			tables[t][sig] = append(tables[t][sig], e.ID)
			allSigs[t][sig] = struct{}{}
		}
	}

	idx.dim = dim
	idx.planes = planes
	idx.tables = tables
	idx.allSigs = allSigs
	idx.vectors = vectors
	idx.built = true
	log.Info().Int("count", len(entries)).Int("dim", dim).Int("tables", idx.NumTables).
		Int("hyperplanes", idx.NumHyperplanes).Msg("lsh index built")
	return nil
}

// sign computes the H-bit signature of v against one table's hyperplanes.
func sign(v []float32, table [][]float32) signature {
	var sig signature
	for h, normal := range table {
		dot, _ := core.Dot(v, normal)
		if dot >= 0 {
			sig |= 1 << uint(h)
		}
	}
	return sig
}

type scored struct {
	id  string
	sim float64
}

// Search widens the Hamming radius around the query's per-table signature
// until at least k candidates are collected or RadiusCap is exceeded, then
// reranks the candidate set by exact cosine similarity.
func (idx *Index) Search(query []float32, k int) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.built {
		return nil, kerrors.NotBuiltErr()
	}
	if k == 0 {
		return nil, kerrors.InvalidArgumentf("k must be greater than 0")
	}
	if len(idx.vectors) > 0 && len(query) != idx.dim {
		return nil, kerrors.DimensionMismatchf(idx.dim, len(query))
	}
	if !core.AllFinite(query) {
		return nil, kerrors.InvalidArgumentf("query contains a non-finite component")
	}
	if len(idx.vectors) == 0 {
		return nil, nil
	}

	querySigs := make([]signature, idx.NumTables)
	for t := 0; t < idx.NumTables; t++ {
		querySigs[t] = sign(query, idx.planes[t])
	}

	candidates := make(map[string]struct{})
	collect := func(radius int) {
		for t := 0; t < idx.NumTables; t++ {
			for sig := range idx.allSigs[t] {
				if bits.OnesCount64(uint64(sig^querySigs[t])) != radius {
					continue
				}
				for _, id := range idx.tables[t][sig] {
					candidates[id] = struct{}{}
				}
			}
		}
	}

	collect(0)
	for r := 1; len(candidates) < k && r <= idx.RadiusCap; r++ {
		collect(r)
	}

	results := make([]scored, 0, len(candidates))
	for id := range candidates {
		sim, err := core.Cosine(query, idx.vectors[id])
		if err != nil {
			return nil, err
		}
		results = append(results, scored{id: id, sim: sim})
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
